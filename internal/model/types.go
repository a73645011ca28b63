package model

import "time"

// NookletType enumerates the supported entry kinds.
type NookletType string

const (
	TypeJournal      NookletType = "journal"
	TypeVoice        NookletType = "voice"
	TypeQuickCapture NookletType = "quick_capture"
)

// ValidNookletType reports whether t is one of the supported entry kinds.
func ValidNookletType(t NookletType) bool {
	switch t {
	case TypeJournal, TypeVoice, TypeQuickCapture:
		return true
	}
	return false
}

// Nooklet is a single journal/voice/quick-capture entry owned by a profile.
// WordCount is derived from Content: nil when content was never provided,
// 0 when content is whitespace-only.
type Nooklet struct {
	ID          string                 `json:"id"`
	ProfileID   string                 `json:"profileId"`
	Type        NookletType            `json:"type"`
	Content     string                 `json:"content"`
	RawContent  *string                `json:"rawContent"`
	Summary     *string                `json:"summary"`
	Metadata    map[string]interface{} `json:"metadata"`
	IsDraft     bool                   `json:"isDraft"`
	IsFavorite  bool                   `json:"isFavorite"`
	IsArchived  bool                   `json:"isArchived"`
	WordCount   *int                   `json:"wordCount"`
	PublishedAt *time.Time             `json:"publishedAt"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// Profile is the application-level identity owning nooklets, distinct from
// the authentication identity.
type Profile struct {
	ID               string    `json:"id"`
	AuthUserID       string    `json:"authUserId"`
	Username         *string   `json:"username"`
	DisplayName      *string   `json:"displayName"`
	Timezone         *string   `json:"timezone"`
	SubscriptionTier *string   `json:"subscriptionTier"`
	IsArchived       bool      `json:"isArchived"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AuthUser is an authentication account. PasswordHash never leaves the server.
type AuthUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	IsArchived   bool      `json:"isArchived"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is an opaque bearer token bound to an auth user.
type Session struct {
	Token      string    `json:"token"`
	AuthUserID string    `json:"authUserId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChunkHit is a retrieved chunk from the vector index.
type ChunkHit struct {
	ChunkID string  `json:"chunkId"`
	Content string  `json:"content"`
	User    string  `json:"user"`
	Date    *string `json:"date,omitempty"`
	Score   float64 `json:"score"`
}
