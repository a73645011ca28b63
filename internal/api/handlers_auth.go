package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nooklet/nooklet/internal/api/respond"
	"github.com/nooklet/nooklet/internal/api/validate"
	"github.com/nooklet/nooklet/internal/auth"
	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email       string  `json:"email"`
		Password    string  `json:"password"`
		Username    *string `json:"username,omitempty"`
		DisplayName *string `json:"displayName,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Email(in.Email); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validate.Password(in.Password); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if in.Username != nil {
		if err := validate.Username(*in.Username); err != nil {
			respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	u, p, err := h.svc.Register(r.Context(), services.RegisterRequest{
		Email:       in.Email,
		Password:    in.Password,
		Username:    in.Username,
		DisplayName: in.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			respond.WriteTaggedError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
		case errors.Is(err, services.ErrUsernameTaken):
			respond.WriteTaggedError(w, http.StatusConflict, "USERNAME_TAKEN", "username already taken")
		default:
			respond.WriteInternalError(w, "registration failed")
		}
		return
	}

	respond.WriteData(w, http.StatusCreated, map[string]interface{}{
		"user":    u,
		"profile": p,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}

	u, token, err := h.svc.Login(r.Context(), services.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			respond.WriteUnauthorized(w, "invalid credentials")
		case errors.Is(err, model.ErrAccountInactive):
			respond.WriteTaggedError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", "account is inactive")
		default:
			respond.WriteInternalError(w, "login failed")
		}
		return
	}

	respond.WriteData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractBearerToken(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		respond.WriteInternalError(w, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
