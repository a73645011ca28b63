package services

import (
	"context"
	"strings"
	"time"

	"github.com/nooklet/nooklet/internal/model"
	"github.com/nooklet/nooklet/internal/store"
)

// NookletService enforces business rules around nooklet persistence,
// independent of transport.
type NookletService struct {
	store store.Store
}

func NewNookletService(s store.Store) *NookletService {
	return &NookletService{store: s}
}

// CreateNookletRequest carries the fields accepted at creation time.
// Metadata is typed loosely so sanitization can reject non-object input.
type CreateNookletRequest struct {
	ProfileID   string
	Type        model.NookletType
	Content     string
	RawContent  *string
	Summary     *string
	Metadata    interface{}
	IsDraft     bool
	IsFavorite  bool
	PublishedAt *time.Time
}

// UpdateNookletRequest is a partial patch. A nil pointer leaves the field
// unchanged; for nullable fields the companion Set flag distinguishes
// "absent" from "clear".
type UpdateNookletRequest struct {
	Type    *model.NookletType
	Content *string

	RawContent    *string
	RawContentSet bool

	Summary    *string
	SummarySet bool

	Metadata    interface{}
	MetadataSet bool

	IsDraft    *bool
	IsFavorite *bool

	PublishedAt    *time.Time
	PublishedAtSet bool
}

// ListForProfile returns all non-archived nooklets for the owner,
// ordered by creation time ascending. Never returns nil.
func (s *NookletService) ListForProfile(ctx context.Context, profileID string) ([]*model.Nooklet, error) {
	out, err := s.store.Nooklets().ListActive(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.Nooklet{}
	}
	return out, nil
}

// Create inserts a new nooklet with defaults applied and wordCount derived
// from the content.
func (s *NookletService) Create(ctx context.Context, req CreateNookletRequest) (*model.Nooklet, error) {
	typ := req.Type
	if typ == "" {
		typ = model.TypeJournal
	}
	content := req.Content
	n := &model.Nooklet{
		ProfileID:   req.ProfileID,
		Type:        typ,
		Content:     content,
		RawContent:  req.RawContent,
		Summary:     req.Summary,
		Metadata:    SanitizeMetadata(req.Metadata),
		IsDraft:     req.IsDraft,
		IsFavorite:  req.IsFavorite,
		WordCount:   ComputeWordCount(&content),
		PublishedAt: req.PublishedAt,
	}
	return s.store.Nooklets().Create(ctx, n)
}

// Update applies a partial patch to a nooklet scoped to (id, profileID).
// Patching content recomputes wordCount; setting isDraft=true forces
// publishedAt to null in the same update.
func (s *NookletService) Update(ctx context.Context, id, profileID string, patch UpdateNookletRequest) (*model.Nooklet, error) {
	n, err := s.store.Nooklets().GetByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	if patch.Type != nil {
		n.Type = *patch.Type
	}
	if patch.Content != nil {
		n.Content = *patch.Content
		n.WordCount = ComputeWordCount(patch.Content)
	}
	if patch.RawContentSet {
		n.RawContent = patch.RawContent
	}
	if patch.SummarySet {
		n.Summary = patch.Summary
	}
	if patch.MetadataSet {
		n.Metadata = SanitizeMetadata(patch.Metadata)
	}
	if patch.PublishedAtSet {
		n.PublishedAt = patch.PublishedAt
	}
	if patch.IsFavorite != nil {
		n.IsFavorite = *patch.IsFavorite
	}
	// Draft forcing runs last so it wins over a publishedAt patch in the
	// same request.
	if patch.IsDraft != nil {
		n.IsDraft = *patch.IsDraft
		if *patch.IsDraft {
			n.PublishedAt = nil
		}
	}

	return s.store.Nooklets().Save(ctx, n)
}

// Archive sets isArchived on the scoped nooklet. Archiving an already
// archived entry is a no-op and performs no write.
func (s *NookletService) Archive(ctx context.Context, id, profileID string) (*model.Nooklet, error) {
	n, err := s.store.Nooklets().GetByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}
	if n.IsArchived {
		return n, nil
	}
	n.IsArchived = true
	return s.store.Nooklets().Save(ctx, n)
}

// Restore clears isArchived; the mirror of Archive, equally idempotent.
func (s *NookletService) Restore(ctx context.Context, id, profileID string) (*model.Nooklet, error) {
	n, err := s.store.Nooklets().GetByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}
	if !n.IsArchived {
		return n, nil
	}
	n.IsArchived = false
	return s.store.Nooklets().Save(ctx, n)
}

// ComputeWordCount counts whitespace-delimited non-empty tokens.
// A nil input returns nil, distinguishing "no content provided" from
// "empty content" (0).
func ComputeWordCount(content *string) *int {
	if content == nil {
		return nil
	}
	count := len(strings.Fields(*content))
	return &count
}

// SanitizeMetadata normalizes metadata to an object. Arrays and other
// non-object values are coerced to an empty map rather than rejected.
func SanitizeMetadata(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok && m != nil {
		return m
	}
	return map[string]interface{}{}
}
