package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

var (
	ErrEmailTaken    = fmt.Errorf("EMAIL_TAKEN: %w", model.ErrConflict)
	ErrUsernameTaken = fmt.Errorf("USERNAME_TAKEN: %w", model.ErrConflict)

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration, login, and session issuance.
type AuthService struct {
	store store.Store
}

func NewAuthService(s store.Store) *AuthService {
	return &AuthService{store: s}
}

type RegisterRequest struct {
	Email       string
	Password    string
	Username    *string
	DisplayName *string
}

type LoginRequest struct {
	Email    string
	Password string
}

// Register creates the auth user and its profile atomically.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.AuthUser, *model.Profile, error) {
	if _, err := s.store.AuthUsers().GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, err
	}
	if req.Username != nil && *req.Username != "" {
		if _, err := s.store.Profiles().GetByUsername(ctx, *req.Username); err == nil {
			return nil, nil, ErrUsernameTaken
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	u := &model.AuthUser{Email: req.Email, PasswordHash: string(hash)}
	p := &model.Profile{Username: req.Username, DisplayName: req.DisplayName}
	return s.store.AuthUsers().CreateWithProfile(ctx, u, p)
}

// Login verifies credentials and issues an opaque bearer session token.
// Inactive or archived accounts are rejected after the password check so
// the failure mode does not leak account state to guessers.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*model.AuthUser, string, error) {
	u, err := s.store.AuthUsers().GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !u.IsActive || u.IsArchived {
		return nil, "", model.ErrAccountInactive
	}

	sess, err := s.store.Sessions().Create(ctx, &model.Session{AuthUserID: u.ID})
	if err != nil {
		return nil, "", err
	}
	return u, sess.Token, nil
}

// Logout invalidates a session token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.store.Sessions().Delete(ctx, token)
}

// VerifyPassword reports whether password matches the user's stored hash.
func (s *AuthService) VerifyPassword(u *model.AuthUser, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
