package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/prompthive/internal/errors"
)

// DeleteInput contains parameters for the DeletePrompt operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the DeletePrompt operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeletePrompt removes a prompt permanently.
func DeletePrompt(ctx context.Context, lib Library, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	db, err := lib.Read(ctx)
	if err != nil {
		return nil, err
	}
	idx := db.FindPrompt(id)
	if idx < 0 {
		return nil, errors.NewNotFound("prompt", id)
	}
	db.Prompts = append(db.Prompts[:idx], db.Prompts[idx+1:]...)

	if err := lib.Write(ctx, db); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: id}, nil
}
