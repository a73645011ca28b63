package services

import (
	"context"
	"errors"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// ProfileService resolves owning profiles for authenticated identities.
type ProfileService struct {
	store store.Store
}

func NewProfileService(s store.Store) *ProfileService {
	return &ProfileService{store: s}
}

// ResolveOwner maps an authenticated identity to its profile id.
// Returns model.ErrProfileNotFound when no profile exists for the identity.
func (s *ProfileService) ResolveOwner(ctx context.Context, authUserID string) (string, error) {
	p, err := s.store.Profiles().GetByAuthUser(ctx, authUserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.ErrProfileNotFound
		}
		return "", err
	}
	return p.ID, nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	return s.store.Profiles().GetByID(ctx, id)
}
