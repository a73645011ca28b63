package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// Open opens (or creates) a SQLite database at the given path with WAL
// journal mode and foreign keys enabled.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a private in-memory database, used by tests.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, err
	}
	// A single connection keeps the in-memory database alive and visible.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &sqStore{db: db} }

type sqStore struct{ db *sql.DB }

func (s *sqStore) AuthUsers() store.AuthUsers { return &authUsers{db: s.db} }
func (s *sqStore) Profiles() store.Profiles   { return &profiles{db: s.db} }
func (s *sqStore) Nooklets() store.Nooklets   { return &nooklets{db: s.db} }
func (s *sqStore) Sessions() store.Sessions   { return &sessions{db: s.db} }

// HealthPing implements health.HealthPinger for the SQLite-backed store.
func (s *sqStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS auth_users (
        id            TEXT PRIMARY KEY,
        email         TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        is_active     INTEGER NOT NULL DEFAULT 1,
        is_archived   INTEGER NOT NULL DEFAULT 0,
        created_at    TIMESTAMP NOT NULL,
        updated_at    TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS profiles (
        id                TEXT PRIMARY KEY,
        auth_user_id      TEXT NOT NULL UNIQUE REFERENCES auth_users(id),
        username          TEXT UNIQUE,
        display_name      TEXT,
        timezone          TEXT,
        subscription_tier TEXT,
        is_archived       INTEGER NOT NULL DEFAULT 0,
        created_at        TIMESTAMP NOT NULL,
        updated_at        TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS nooklets (
        id           TEXT PRIMARY KEY,
        profile_id   TEXT NOT NULL REFERENCES profiles(id),
        type         TEXT NOT NULL DEFAULT 'journal',
        content      TEXT NOT NULL,
        raw_content  TEXT,
        summary      TEXT,
        metadata     TEXT NOT NULL DEFAULT '{}',
        is_draft     INTEGER NOT NULL DEFAULT 0,
        is_favorite  INTEGER NOT NULL DEFAULT 0,
        is_archived  INTEGER NOT NULL DEFAULT 0,
        word_count   INTEGER,
        published_at TIMESTAMP,
        created_at   TIMESTAMP NOT NULL,
        updated_at   TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_nooklets_profile_created
        ON nooklets (profile_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS sessions (
        token        TEXT PRIMARY KEY,
        auth_user_id TEXT NOT NULL REFERENCES auth_users(id),
        created_at   TIMESTAMP NOT NULL
    )`,
}

// --- AuthUsers ---

type authUsers struct{ db *sql.DB }

func (a *authUsers) CreateWithProfile(ctx context.Context, u *model.AuthUser, p *model.Profile) (*model.AuthUser, *model.Profile, error) {
	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	outU := *u
	if outU.ID == "" {
		outU.ID = uuid.New().String()
	}
	outU.IsActive = true
	outU.CreatedAt = now
	outU.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO auth_users (id, email, password_hash, is_active, is_archived, created_at, updated_at)
        VALUES (?,?,?,1,0,?,?)
    `, outU.ID, outU.Email, outU.PasswordHash, now, now); err != nil {
		return nil, nil, err
	}

	outP := *p
	if outP.ID == "" {
		outP.ID = uuid.New().String()
	}
	outP.AuthUserID = outU.ID
	outP.CreatedAt = now
	outP.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO profiles (id, auth_user_id, username, display_name, timezone, subscription_tier, is_archived, created_at, updated_at)
        VALUES (?,?,?,?,?,?,0,?,?)
    `, outP.ID, outP.AuthUserID, outP.Username, outP.DisplayName, outP.Timezone, outP.SubscriptionTier, now, now); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &outU, &outP, nil
}

func (a *authUsers) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	return scanAuthUser(a.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, is_active, is_archived, created_at, updated_at
        FROM auth_users WHERE email=?
    `, email))
}

func (a *authUsers) GetByID(ctx context.Context, id string) (*model.AuthUser, error) {
	return scanAuthUser(a.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, is_active, is_archived, created_at, updated_at
        FROM auth_users WHERE id=?
    `, id))
}

func scanAuthUser(row *sql.Row) (*model.AuthUser, error) {
	var out model.AuthUser
	if err := row.Scan(&out.ID, &out.Email, &out.PasswordHash, &out.IsActive, &out.IsArchived, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

const profileColumns = `id, auth_user_id, username, display_name, timezone, subscription_tier, is_archived, created_at, updated_at`

func (p *profiles) GetByAuthUser(ctx context.Context, authUserID string) (*model.Profile, error) {
	return scanProfile(p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE auth_user_id=?`, authUserID))
}

func (p *profiles) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return scanProfile(p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id=?`, id))
}

func (p *profiles) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return scanProfile(p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username=?`, username))
}

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var out model.Profile
	if err := row.Scan(&out.ID, &out.AuthUserID, &out.Username, &out.DisplayName, &out.Timezone, &out.SubscriptionTier, &out.IsArchived, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

// --- Nooklets ---

type nooklets struct{ db *sql.DB }

const nookletColumns = `id, profile_id, type, content, raw_content, summary, metadata, is_draft, is_favorite, is_archived, word_count, published_at, created_at, updated_at`

func (n *nooklets) Create(ctx context.Context, m *model.Nooklet) (*model.Nooklet, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now
	if _, err := n.db.ExecContext(ctx, `
        INSERT INTO nooklets (id, profile_id, type, content, raw_content, summary, metadata, is_draft, is_favorite, is_archived, word_count, published_at, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.ID, out.ProfileID, string(out.Type), out.Content, out.RawContent, out.Summary,
		metadataJSON(out.Metadata), out.IsDraft, out.IsFavorite, out.IsArchived,
		out.WordCount, out.PublishedAt, out.CreatedAt, out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *nooklets) GetByID(ctx context.Context, profileID, id string) (*model.Nooklet, error) {
	row := n.db.QueryRowContext(ctx,
		`SELECT `+nookletColumns+` FROM nooklets WHERE id=? AND profile_id=?`, id, profileID)
	m, err := scanNooklet(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return m, nil
}

func (n *nooklets) ListActive(ctx context.Context, profileID string) ([]*model.Nooklet, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT `+nookletColumns+` FROM nooklets
        WHERE profile_id=? AND is_archived=0
        ORDER BY created_at ASC
    `, profileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Nooklet
	for rows.Next() {
		m, err := scanNooklet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (n *nooklets) Save(ctx context.Context, m *model.Nooklet) (*model.Nooklet, error) {
	out := *m
	out.UpdatedAt = time.Now().UTC()
	res, err := n.db.ExecContext(ctx, `
        UPDATE nooklets
        SET type=?, content=?, raw_content=?, summary=?, metadata=?,
            is_draft=?, is_favorite=?, is_archived=?, word_count=?,
            published_at=?, updated_at=?
        WHERE id=? AND profile_id=?
    `, string(out.Type), out.Content, out.RawContent, out.Summary, metadataJSON(out.Metadata),
		out.IsDraft, out.IsFavorite, out.IsArchived, out.WordCount, out.PublishedAt,
		out.UpdatedAt, out.ID, out.ProfileID)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, model.ErrNotFound
	}
	return &out, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanNooklet(row rowScanner) (*model.Nooklet, error) {
	var m model.Nooklet
	var typ string
	var meta sql.NullString
	if err := row.Scan(&m.ID, &m.ProfileID, &typ, &m.Content, &m.RawContent, &m.Summary, &meta,
		&m.IsDraft, &m.IsFavorite, &m.IsArchived, &m.WordCount, &m.PublishedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Type = model.NookletType(typ)
	m.Metadata = decodeMetadata(meta)
	return &m, nil
}

// --- Sessions ---

type sessions struct{ db *sql.DB }

func (s *sessions) Create(ctx context.Context, m *model.Session) (*model.Session, error) {
	out := *m
	if out.Token == "" {
		out.Token = uuid.New().String()
	}
	out.CreatedAt = time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions (token, auth_user_id, created_at) VALUES (?,?,?)
    `, out.Token, out.AuthUserID, out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *sessions) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var out model.Session
	row := s.db.QueryRowContext(ctx, `
        SELECT token, auth_user_id, created_at FROM sessions WHERE token=?
    `, token)
	if err := row.Scan(&out.Token, &out.AuthUserID, &out.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (s *sessions) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token=?`, token)
	return err
}

// helpers

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func metadataJSON(m map[string]interface{}) string {
	if m == nil {
		return `{}`
	}
	b, err := json.Marshal(m)
	if err != nil {
		return `{}`
	}
	return string(b)
}

func decodeMetadata(s sql.NullString) map[string]interface{} {
	out := map[string]interface{}{}
	if s.Valid && s.String != "" {
		_ = json.Unmarshal([]byte(s.String), &out)
	}
	return out
}
