package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/filter"
	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/variables"
)

// GetOutput contains the result of the GetPrompt operation.
type GetOutput struct {
	library.Prompt                 // embedded (copy, not pointer)
	CollectionName string   `json:"collectionName,omitempty"`
	Variables      []string `json:"variables"`
	BodyChars      int      `json:"bodyChars"`
	TokensEstimate int      `json:"tokensEstimate"`
}

// GetPrompt retrieves a prompt by id along with its template variables.
func GetPrompt(ctx context.Context, lib Library, id string) (*GetOutput, error) {
	db, p, err := findPrompt(ctx, lib, id)
	if err != nil {
		return nil, err
	}

	out := &GetOutput{
		Prompt:         *p,
		Variables:      variables.Extract(p.Body),
		BodyChars:      filter.CountChars(p.Body),
		TokensEstimate: filter.EstimateTokens(p.Body),
	}
	if p.CollectionID != nil {
		if c := db.FindCollection(*p.CollectionID); c != nil {
			out.CollectionName = c.Name
		}
	}
	return out, nil
}

// FillInput contains parameters for the FillPrompt operation.
type FillInput struct {
	ID     string
	Values map[string]string
}

// FillOutput contains the result of the FillPrompt operation.
type FillOutput struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Missing []string `json:"missing"`
}

// FillPrompt substitutes variable values into a prompt body.
// Variables without a value stay in the text and are listed in Missing.
func FillPrompt(ctx context.Context, lib Library, input FillInput) (*FillOutput, error) {
	_, p, err := findPrompt(ctx, lib, input.ID)
	if err != nil {
		return nil, err
	}
	missing := variables.Missing(p.Body, input.Values)
	if missing == nil {
		missing = []string{}
	}
	return &FillOutput{
		ID:      p.ID,
		Text:    variables.Fill(p.Body, input.Values),
		Missing: missing,
	}, nil
}

func findPrompt(ctx context.Context, lib Library, id string) (*library.Database, *library.Prompt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, errors.NewInvalidRequest("id is required")
	}
	db, err := lib.Read(ctx)
	if err != nil {
		return nil, nil, err
	}
	idx := db.FindPrompt(id)
	if idx < 0 {
		return nil, nil, errors.NewNotFound("prompt", id)
	}
	return db, &db.Prompts[idx], nil
}
