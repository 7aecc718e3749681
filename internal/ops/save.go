package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/library"
)

// SaveInput contains parameters for the SavePrompt operation.
type SaveInput struct {
	ID             string // optional; empty creates a new prompt
	Title          string // required
	Description    string
	Body           string // required
	ShortPrompt    *string
	ExampleOutput  *string
	ExpectedResult *string
	IsFavorite     *bool // nil keeps the stored value
	Tags           []string
	CollectionID   *string // nil or blank means no collection
}

// SaveOutput contains the result of the SavePrompt operation.
type SaveOutput struct {
	ID      string         `json:"id"`
	Created bool           `json:"created"`
	Prompt  library.Prompt `json:"prompt"`
}

// SavePrompt creates a prompt or replaces an existing one with the same id.
// New prompts go to the front of the list; edits keep their position and createdAt.
func SavePrompt(ctx context.Context, lib Library, input SaveInput) (*SaveOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, errors.NewInvalidRequest("body is required")
	}

	db, err := lib.Read(ctx)
	if err != nil {
		return nil, err
	}

	collectionID := cleanOptionalString(input.CollectionID)
	if collectionID != nil && db.FindCollection(*collectionID) == nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("collection not found: %s", *collectionID))
	}

	id := strings.TrimSpace(input.ID)
	idx := -1
	if id != "" {
		idx = db.FindPrompt(id)
	} else {
		id, err = generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	ts := library.At(now())
	p := library.Prompt{
		ID:             id,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Body:           input.Body,
		ShortPrompt:    cleanOptionalString(input.ShortPrompt),
		ExampleOutput:  cleanOptionalString(input.ExampleOutput),
		ExpectedResult: cleanOptionalString(input.ExpectedResult),
		Tags:           ParseTags(input.Tags...),
		CollectionID:   collectionID,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if input.IsFavorite != nil {
		p.IsFavorite = *input.IsFavorite
	}

	if idx >= 0 {
		existing := db.Prompts[idx]
		p.CreatedAt = existing.CreatedAt
		if input.IsFavorite == nil {
			p.IsFavorite = existing.IsFavorite
		}
		db.Prompts[idx] = p
	} else {
		db.Prompts = append([]library.Prompt{p}, db.Prompts...)
	}

	if err := lib.Write(ctx, db); err != nil {
		return nil, err
	}
	return &SaveOutput{ID: id, Created: idx < 0, Prompt: p}, nil
}
