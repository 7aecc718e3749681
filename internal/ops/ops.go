package ops

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/prompthive/internal/filter"
	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/variables"
)

// Pagination limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Library is the read/write contract every operation works against.
// *storage.Gateway implements it.
type Library interface {
	Read(ctx context.Context) (*library.Database, error)
	Write(ctx context.Context, db *library.Database) error
}

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// PromptSummary is a prompt without its long text fields.
type PromptSummary struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Tags           []string          `json:"tags"`
	IsFavorite     bool              `json:"is_favorite"`
	CollectionID   *string           `json:"collection_id,omitempty"`
	Variables      []string          `json:"variables"`
	BodyChars      int               `json:"body_chars"`
	TokensEstimate int               `json:"tokens_estimate"`
	UpdatedAt      library.Timestamp `json:"updated_at"`
}

// Summarize builds the list view of p.
func Summarize(p library.Prompt) PromptSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PromptSummary{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Tags:           tags,
		IsFavorite:     p.IsFavorite,
		CollectionID:   p.CollectionID,
		Variables:      variables.Extract(p.Body),
		BodyChars:      filter.CountChars(p.Body),
		TokensEstimate: filter.EstimateTokens(p.Body),
		UpdatedAt:      p.UpdatedAt,
	}
}

// ParseTags splits comma-separated entries, trims them and drops blanks and duplicates.
func ParseTags(raw ...string) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, entry := range raw {
		for _, t := range strings.Split(entry, ",") {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// cleanOptionalString trims s and maps blank values to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// generateULID generates a new ULID for a prompt.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// generateCollectionID generates a random UUID for a collection.
func generateCollectionID() string {
	return uuid.NewString()
}

// now is the clock used for timestamps. Tests may replace it.
var now = func() time.Time { return time.Now().UTC() }
