package auth

import (
	"context"
)

// LocalDevToken is the fixed bearer token accepted in development mode only.
const LocalDevToken = "nk_local_dev_token"

// DevAuthorizer accepts the fixed development token and falls back to the
// wrapped authorizer for everything else. It exists so local tooling can hit
// the API without registering first.
type DevAuthorizer struct {
	next       Authorizer
	authUserID string
}

func NewDevAuthorizer(next Authorizer, authUserID string) *DevAuthorizer {
	return &DevAuthorizer{next: next, authUserID: authUserID}
}

func (a *DevAuthorizer) Authorize(ctx context.Context, token string) (*ActorInfo, error) {
	if token == LocalDevToken {
		return &ActorInfo{AuthUserID: a.authUserID, Email: "dev@localhost"}, nil
	}
	if a.next == nil {
		return nil, ErrInvalidToken
	}
	return a.next.Authorize(ctx, token)
}
