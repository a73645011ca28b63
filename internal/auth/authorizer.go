package auth

import (
	"context"
)

// ActorInfo describes the authenticated caller of a request.
type ActorInfo struct {
	AuthUserID string `json:"authUserId"`
	Email      string `json:"email"`
}

// Authorizer resolves a bearer token to an authenticated actor.
type Authorizer interface {
	// Authorize validates the token and returns the actor it belongs to.
	// Unknown, expired, or deactivated credentials all fail with
	// ErrInvalidToken so callers cannot probe account state.
	Authorize(ctx context.Context, token string) (*ActorInfo, error)
}
