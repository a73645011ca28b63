package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nooklet/nooklet/internal/api/respond"
	"github.com/nooklet/nooklet/internal/rag"
)

// RagHandler exposes the test endpoints for the embed/chat pipeline.
type RagHandler struct {
	svc *rag.Service
}

func NewRagHandler(svc *rag.Service) *RagHandler { return &RagHandler{svc: svc} }

// EmbedText handles POST /test/llm/embed-text.
func (h *RagHandler) EmbedText(w http.ResponseWriter, r *http.Request) {
	var in rag.EmbedTextRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Content) == "" || strings.TrimSpace(in.User) == "" {
		respond.WriteError(w, http.StatusUnprocessableEntity, "content and user are required")
		return
	}

	res, err := h.svc.EmbedText(r.Context(), in)
	if err != nil {
		respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"chunksProcessed": res.ChunksProcessed,
		"collection":      res.Collection,
	})
}

// Chat handles POST /test/llm/chat.
func (h *RagHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in rag.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Prompt) == "" {
		respond.WriteError(w, http.StatusUnprocessableEntity, "prompt is required")
		return
	}

	res, err := h.svc.Chat(r.Context(), in)
	if err != nil {
		respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"answer":    res.Answer,
		"retrieved": res.Retrieved,
		"chunks":    res.Chunks,
	})
}
