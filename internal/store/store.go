package store

import (
	"context"

	"github.com/nooklet/nooklet/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	AuthUsers() AuthUsers
	Profiles() Profiles
	Nooklets() Nooklets
	Sessions() Sessions
}

type AuthUsers interface {
	// CreateWithProfile inserts the auth user and its profile atomically.
	CreateWithProfile(ctx context.Context, u *model.AuthUser, p *model.Profile) (*model.AuthUser, *model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	GetByID(ctx context.Context, id string) (*model.AuthUser, error)
}

type Profiles interface {
	// GetByAuthUser resolves the profile owning nooklets for an authenticated
	// identity. Returns model.ErrNotFound when the identity has no profile.
	GetByAuthUser(ctx context.Context, authUserID string) (*model.Profile, error)
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
}

type Nooklets interface {
	Create(ctx context.Context, n *model.Nooklet) (*model.Nooklet, error)

	// GetByID loads a nooklet scoped to its owner. A missing row and a row
	// owned by a different profile both return model.ErrNotFound.
	GetByID(ctx context.Context, profileID, id string) (*model.Nooklet, error)

	// ListActive returns non-archived nooklets for the profile,
	// ordered by creation time ascending.
	ListActive(ctx context.Context, profileID string) ([]*model.Nooklet, error)

	// Save persists every mutable field of a loaded nooklet and refreshes
	// updatedAt. The write is scoped to (id, profileId).
	Save(ctx context.Context, n *model.Nooklet) (*model.Nooklet, error)
}

type Sessions interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
}
