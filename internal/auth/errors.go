package auth

import "errors"

var (
	// ErrMissingToken is returned when no Authorization header is present.
	ErrMissingToken = errors.New("missing Authorization header")

	// ErrMalformedHeader is returned when the Authorization header is not
	// in "Bearer <token>" form.
	ErrMalformedHeader = errors.New("invalid Authorization header format, expected 'Bearer <token>'")

	// ErrInvalidToken covers unknown tokens and tokens whose account can no
	// longer log in.
	ErrInvalidToken = errors.New("invalid or expired token")
)
