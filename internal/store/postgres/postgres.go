package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) AuthUsers() store.AuthUsers { return &authUsers{db: s.db} }
func (s *pgStore) Profiles() store.Profiles   { return &profiles{db: s.db} }
func (s *pgStore) Nooklets() store.Nooklets   { return &nooklets{db: s.db} }
func (s *pgStore) Sessions() store.Sessions   { return &sessions{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, ddl)
	return err
}

const ddl = `
CREATE TABLE IF NOT EXISTS auth_users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    is_archived   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    id                TEXT PRIMARY KEY,
    auth_user_id      TEXT NOT NULL UNIQUE REFERENCES auth_users(id),
    username          TEXT UNIQUE,
    display_name      TEXT,
    timezone          TEXT,
    subscription_tier TEXT,
    is_archived       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS nooklets (
    id           TEXT PRIMARY KEY,
    profile_id   TEXT NOT NULL REFERENCES profiles(id),
    type         TEXT NOT NULL DEFAULT 'journal',
    content      TEXT NOT NULL,
    raw_content  TEXT,
    summary      TEXT,
    metadata     JSONB NOT NULL DEFAULT '{}',
    is_draft     BOOLEAN NOT NULL DEFAULT FALSE,
    is_favorite  BOOLEAN NOT NULL DEFAULT FALSE,
    is_archived  BOOLEAN NOT NULL DEFAULT FALSE,
    word_count   INTEGER,
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nooklets_profile_active
    ON nooklets (profile_id, created_at) WHERE NOT is_archived;

CREATE TABLE IF NOT EXISTS sessions (
    token        TEXT PRIMARY KEY,
    auth_user_id TEXT NOT NULL REFERENCES auth_users(id),
    created_at   TIMESTAMPTZ NOT NULL
);
`

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
        VALUES ($1,$2,$3,TRUE,FALSE,$4,$4)
    `, outU.ID, outU.Email, outU.PasswordHash, now); err != nil {
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
        VALUES ($1,$2,$3,$4,$5,$6,FALSE,$7,$7)
    `, outP.ID, outP.AuthUserID, outP.Username, outP.DisplayName, outP.Timezone, outP.SubscriptionTier, now); err != nil {
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
        FROM auth_users WHERE email=$1
    `, email))
}

func (a *authUsers) GetByID(ctx context.Context, id string) (*model.AuthUser, error) {
	return scanAuthUser(a.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, is_active, is_archived, created_at, updated_at
        FROM auth_users WHERE id=$1
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
		`SELECT `+profileColumns+` FROM profiles WHERE auth_user_id=$1`, authUserID))
}

func (p *profiles) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return scanProfile(p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id))
}

func (p *profiles) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return scanProfile(p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username=$1`, username))
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
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    `, out.ID, out.ProfileID, string(out.Type), out.Content, out.RawContent, out.Summary,
		metadataJSON(out.Metadata), out.IsDraft, out.IsFavorite, out.IsArchived,
		out.WordCount, out.PublishedAt, out.CreatedAt, out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *nooklets) GetByID(ctx context.Context, profileID, id string) (*model.Nooklet, error) {
	return scanNooklet(n.db.QueryRowContext(ctx,
		`SELECT `+nookletColumns+` FROM nooklets WHERE id=$1 AND profile_id=$2`, id, profileID))
}

func (n *nooklets) ListActive(ctx context.Context, profileID string) ([]*model.Nooklet, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT `+nookletColumns+` FROM nooklets
        WHERE profile_id=$1 AND is_archived=FALSE
        ORDER BY created_at ASC
    `, profileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Nooklet
	for rows.Next() {
		m, err := scanNookletRows(rows)
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
        SET type=$1, content=$2, raw_content=$3, summary=$4, metadata=$5,
            is_draft=$6, is_favorite=$7, is_archived=$8, word_count=$9,
            published_at=$10, updated_at=$11
        WHERE id=$12 AND profile_id=$13
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

func scanNooklet(row *sql.Row) (*model.Nooklet, error) {
	var m model.Nooklet
	var typ string
	var meta sql.NullString
	if err := row.Scan(&m.ID, &m.ProfileID, &typ, &m.Content, &m.RawContent, &m.Summary, &meta,
		&m.IsDraft, &m.IsFavorite, &m.IsArchived, &m.WordCount, &m.PublishedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	m.Type = model.NookletType(typ)
	m.Metadata = decodeMetadata(meta)
	return &m, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanNookletRows(rows rowScanner) (*model.Nooklet, error) {
	var m model.Nooklet
	var typ string
	var meta sql.NullString
	if err := rows.Scan(&m.ID, &m.ProfileID, &typ, &m.Content, &m.RawContent, &m.Summary, &meta,
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
        INSERT INTO sessions (token, auth_user_id, created_at) VALUES ($1,$2,$3)
    `, out.Token, out.AuthUserID, out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *sessions) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var out model.Session
	row := s.db.QueryRowContext(ctx, `
        SELECT token, auth_user_id, created_at FROM sessions WHERE token=$1
    `, token)
	if err := row.Scan(&out.Token, &out.AuthUserID, &out.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (s *sessions) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// helpers

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// metadataJSON serializes metadata for storage. The column is always an
// object, never null or an array.
func metadataJSON(m map[string]interface{}) []byte {
	if m == nil {
		return []byte(`{}`)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}

func decodeMetadata(s sql.NullString) map[string]interface{} {
	out := map[string]interface{}{}
	if s.Valid && s.String != "" {
		_ = json.Unmarshal([]byte(s.String), &out)
	}
	return out
}
