package model

import "errors"

var (
	// ErrNotFound covers both a missing row and a row owned by someone else.
	// Callers must not distinguish the two cases.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrProfileNotFound means the authenticated identity has no owning profile.
	ErrProfileNotFound = errors.New("PROFILE_NOT_FOUND")

	// ErrInvalidPublishedAt means publishedAt was a non-empty, unparseable string.
	ErrInvalidPublishedAt = errors.New("INVALID_PUBLISHED_AT")

	// ErrAccountInactive means credentials were valid but the account is
	// deactivated or archived.
	ErrAccountInactive = errors.New("ACCOUNT_INACTIVE")
)
