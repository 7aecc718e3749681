package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/prompthive/internal/errors"
)

// FavoriteOutput contains the result of the ToggleFavorite operation.
type FavoriteOutput struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
}

// ToggleFavorite flips the favorite flag of a prompt. updatedAt is left alone.
func ToggleFavorite(ctx context.Context, lib Library, id string) (*FavoriteOutput, error) {
	id = strings.TrimSpace(id)
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
	db.Prompts[idx].IsFavorite = !db.Prompts[idx].IsFavorite

	if err := lib.Write(ctx, db); err != nil {
		return nil, err
	}
	return &FavoriteOutput{ID: id, IsFavorite: db.Prompts[idx].IsFavorite}, nil
}
