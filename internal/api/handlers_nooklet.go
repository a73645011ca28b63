package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/gorilla/mux"

	"github.com/nooklet/nooklet/internal/api/respond"
	"github.com/nooklet/nooklet/internal/api/validate"
	"github.com/nooklet/nooklet/internal/auth"
	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/services"
)

// NookletHandler adapts HTTP requests to the nooklet service contract and
// maps domain failures to status codes. Owner identity is resolved per
// request and passed explicitly into every service call.
type NookletHandler struct {
	nooklets   *services.NookletService
	profiles   *services.ProfileService
	authorizer auth.Authorizer
}

func NewNookletHandler(nooklets *services.NookletService, profiles *services.ProfileService, az auth.Authorizer) *NookletHandler {
	return &NookletHandler{nooklets: nooklets, profiles: profiles, authorizer: az}
}

// actor authenticates the request. Writes 401 and returns nil on failure.
func (h *NookletHandler) actor(w http.ResponseWriter, r *http.Request) *auth.ActorInfo {
	token, err := auth.ExtractBearerToken(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return nil
	}
	actor, err := h.authorizer.Authorize(r.Context(), token)
	if err != nil {
		respond.WriteUnauthorized(w, "invalid or expired token")
		return nil
	}
	return actor
}

// owner resolves the profile owning nooklets for the actor. Writes 400
// PROFILE_NOT_FOUND and returns "" when the identity has no profile.
func (h *NookletHandler) owner(w http.ResponseWriter, r *http.Request, actor *auth.ActorInfo) string {
	profileID, err := h.profiles.ResolveOwner(r.Context(), actor.AuthUserID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			respond.WriteTaggedError(w, http.StatusBadRequest, "PROFILE_NOT_FOUND", "no profile for authenticated user")
		} else {
			respond.WriteInternalError(w, "profile lookup failed")
		}
		return ""
	}
	return profileID
}

// Home handles GET /home: the entry list view. Unauthenticated requests are
// redirected to /login rather than rejected with 401; an authenticated user
// without a profile sees an empty list.
func (h *NookletHandler) Home(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractBearerToken(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	actor, err := h.authorizer.Authorize(r.Context(), token)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	profileID, err := h.profiles.ResolveOwner(r.Context(), actor.AuthUserID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			respond.WriteData(w, http.StatusOK, []*model.Nooklet{})
			return
		}
		respond.WriteInternalError(w, "profile lookup failed")
		return
	}

	list, err := h.nooklets.ListForProfile(r.Context(), profileID)
	if err != nil {
		respond.WriteInternalError(w, "listing failed")
		return
	}
	respond.WriteData(w, http.StatusOK, list)
}

// List handles GET /api/v1/nooklets.
func (h *NookletHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	profileID, err := h.profiles.ResolveOwner(r.Context(), actor.AuthUserID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			respond.WriteData(w, http.StatusOK, []*model.Nooklet{})
			return
		}
		respond.WriteInternalError(w, "profile lookup failed")
		return
	}

	list, err := h.nooklets.ListForProfile(r.Context(), profileID)
	if err != nil {
		respond.WriteInternalError(w, "listing failed")
		return
	}
	respond.WriteData(w, http.StatusOK, list)
}

// Create handles POST /api/v1/nooklets.
func (h *NookletHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	profileID := h.owner(w, r, actor)
	if profileID == "" {
		return
	}

	var in struct {
		Content     string          `json:"content"`
		Type        *string         `json:"type,omitempty"`
		RawContent  *string         `json:"rawContent,omitempty"`
		Summary     *string         `json:"summary,omitempty"`
		Metadata    interface{}     `json:"metadata,omitempty"`
		IsDraft     bool            `json:"isDraft,omitempty"`
		IsFavorite  bool            `json:"isFavorite,omitempty"`
		PublishedAt json.RawMessage `json:"publishedAt,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Content(in.Content); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	typ := model.TypeJournal
	if in.Type != nil {
		typ = model.NookletType(*in.Type)
		if err := validate.NookletType(typ); err != nil {
			respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	publishedAt, err := parsePublishedAt(in.PublishedAt)
	if err != nil {
		respond.WriteTaggedError(w, http.StatusUnprocessableEntity, "INVALID_PUBLISHED_AT", "publishedAt is not a valid ISO-8601 datetime")
		return
	}

	n, err := h.nooklets.Create(r.Context(), services.CreateNookletRequest{
		ProfileID:   profileID,
		Type:        typ,
		Content:     in.Content,
		RawContent:  in.RawContent,
		Summary:     in.Summary,
		Metadata:    in.Metadata,
		IsDraft:     in.IsDraft,
		IsFavorite:  in.IsFavorite,
		PublishedAt: publishedAt,
	})
	if err != nil {
		respond.WriteInternalError(w, "create failed")
		return
	}
	respond.WriteData(w, http.StatusCreated, n)
}

// Update handles PUT /api/v1/nooklets/{id} as a partial patch. Absent
// fields are left untouched; explicit nulls clear nullable fields.
func (h *NookletHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	profileID := h.owner(w, r, actor)
	if profileID == "" {
		return
	}
	id := mux.Vars(r)["id"]

	var in struct {
		Type        *string         `json:"type"`
		Content     *string         `json:"content"`
		RawContent  json.RawMessage `json:"rawContent"`
		Summary     json.RawMessage `json:"summary"`
		Metadata    json.RawMessage `json:"metadata"`
		IsDraft     *bool           `json:"isDraft"`
		IsFavorite  *bool           `json:"isFavorite"`
		PublishedAt json.RawMessage `json:"publishedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}

	patch := services.UpdateNookletRequest{
		Content:    in.Content,
		IsDraft:    in.IsDraft,
		IsFavorite: in.IsFavorite,
	}

	if in.Type != nil {
		typ := model.NookletType(*in.Type)
		if err := validate.NookletType(typ); err != nil {
			respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		patch.Type = &typ
	}
	if in.RawContent != nil {
		patch.RawContentSet = true
		if s, ok := decodeNullableString(in.RawContent); ok {
			patch.RawContent = s
		} else {
			respond.WriteError(w, http.StatusUnprocessableEntity, "rawContent must be a string or null")
			return
		}
	}
	if in.Summary != nil {
		patch.SummarySet = true
		if s, ok := decodeNullableString(in.Summary); ok {
			patch.Summary = s
		} else {
			respond.WriteError(w, http.StatusUnprocessableEntity, "summary must be a string or null")
			return
		}
	}
	if in.Metadata != nil {
		patch.MetadataSet = true
		var v interface{}
		if err := json.Unmarshal(in.Metadata, &v); err != nil {
			respond.WriteBadRequest(w, "invalid metadata")
			return
		}
		patch.Metadata = v
	}
	if in.PublishedAt != nil {
		patch.PublishedAtSet = true
		ts, err := parsePublishedAt(in.PublishedAt)
		if err != nil {
			respond.WriteTaggedError(w, http.StatusUnprocessableEntity, "INVALID_PUBLISHED_AT", "publishedAt is not a valid ISO-8601 datetime")
			return
		}
		patch.PublishedAt = ts
	}

	n, err := h.nooklets.Update(r.Context(), id, profileID, patch)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteTaggedError(w, http.StatusNotFound, "NOOKLET_NOT_FOUND", "nooklet not found")
			return
		}
		respond.WriteInternalError(w, "update failed")
		return
	}
	respond.WriteData(w, http.StatusOK, n)
}

// Archive handles DELETE /api/v1/nooklets/{id}: a logical soft-delete.
func (h *NookletHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.archiveOp(w, r, h.nooklets.Archive)
}

// Restore handles POST /api/v1/nooklets/{id}/restore.
func (h *NookletHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.archiveOp(w, r, h.nooklets.Restore)
}

func (h *NookletHandler) archiveOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, profileID string) (*model.Nooklet, error)) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	profileID := h.owner(w, r, actor)
	if profileID == "" {
		return
	}

	n, err := op(r.Context(), mux.Vars(r)["id"], profileID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteTaggedError(w, http.StatusNotFound, "NOOKLET_NOT_FOUND", "nooklet not found")
			return
		}
		respond.WriteInternalError(w, "operation failed")
		return
	}
	respond.WriteData(w, http.StatusOK, n)
}

// parsePublishedAt interprets the raw publishedAt payload: absent or null
// or blank string mean null; a valid ISO-8601 string yields a timestamp;
// anything else is an error.
func parsePublishedAt(raw json.RawMessage) (*time.Time, error) {
	if raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, model.ErrInvalidPublishedAt
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return nil, model.ErrInvalidPublishedAt
	}
	ts := time.Time(dt).UTC()
	return &ts, nil
}

// decodeNullableString decodes a JSON string or null.
func decodeNullableString(raw json.RawMessage) (*string, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}
