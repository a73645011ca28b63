package auth

import (
	"context"
	"errors"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// SessionAuthorizer resolves opaque session tokens issued at login against
// the store.
type SessionAuthorizer struct {
	store store.Store
}

func NewSessionAuthorizer(s store.Store) *SessionAuthorizer {
	return &SessionAuthorizer{store: s}
}

func (a *SessionAuthorizer) Authorize(ctx context.Context, token string) (*ActorInfo, error) {
	sess, err := a.store.Sessions().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	u, err := a.store.AuthUsers().GetByID(ctx, sess.AuthUserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive || u.IsArchived {
		return nil, ErrInvalidToken
	}

	return &ActorInfo{AuthUserID: u.ID, Email: u.Email}, nil
}
