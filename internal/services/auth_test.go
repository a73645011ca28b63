package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooklet/nooklet/internal/model"
)

func TestRegisterThenLogin(t *testing.T) {
	fs := newFakeStore()
	auth := NewAuthService(fs)
	ctx := context.Background()

	u, p, err := auth.Register(ctx, RegisterRequest{
		Email:    "mori@example.com",
		Password: "hunter22",
		Username: strptr("mori"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, u.ID, p.AuthUserID)
	assert.NotEqual(t, "hunter22", u.PasswordHash, "password must be stored hashed")

	logged, token, err := auth.Login(ctx, LoginRequest{Email: "mori@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, token)

	sess, err := fs.Sessions().GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.AuthUserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fs := newFakeStore()
	auth := NewAuthService(fs)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	fs := newFakeStore()
	auth := NewAuthService(fs)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pw", Username: strptr("dup")})
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, RegisterRequest{Email: "b@example.com", Password: "pw", Username: strptr("dup")})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	fs := newFakeStore()
	auth := NewAuthService(fs)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "right"})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email fails the same way.
	_, _, err = auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "right"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	fs := newFakeStore()
	auth := NewAuthService(fs)
	ctx := context.Background()

	u, _, err := auth.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	fs.authUsers[u.ID].IsActive = false

	_, _, err = auth.Login(ctx, LoginRequest{Email: "a@example.com", Password: "pw"})
	assert.ErrorIs(t, err, model.ErrAccountInactive)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	fs := newFakeStore()
	auth := NewAuthService(fs)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	_, token, err := auth.Login(ctx, LoginRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))
	_, err = fs.Sessions().GetByToken(ctx, token)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Logging out an unknown token is not an error.
	assert.NoError(t, auth.Logout(ctx, "never-issued"))
}

func TestResolveOwner(t *testing.T) {
	fs := newFakeStore()
	profiles := NewProfileService(fs)
	ctx := context.Background()

	profileID := fs.addProfile("auth-1")

	got, err := profiles.ResolveOwner(ctx, "auth-1")
	require.NoError(t, err)
	assert.Equal(t, profileID, got)

	_, err = profiles.ResolveOwner(ctx, "auth-unknown")
	assert.ErrorIs(t, err, model.ErrProfileNotFound)
}
