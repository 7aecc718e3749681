package ops

import (
	"context"

	"github.com/hpungsan/prompthive/internal/filter"
	"github.com/hpungsan/prompthive/internal/library"
)

// ListInput contains parameters for the ListPrompts operation.
type ListInput struct {
	filter.Options
	Limit  int // default: 50, max: 500
	Offset int // default: 0
}

// ListOutput contains the result of the ListPrompts operation.
type ListOutput struct {
	Heading    string          `json:"heading"`
	Items      []PromptSummary `json:"items"`
	Tags       []string        `json:"tags"`
	Pagination Pagination      `json:"pagination"`
}

// ListPrompts returns prompt summaries matching the filter, in stored order.
func ListPrompts(ctx context.Context, lib Library, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	db, err := lib.Read(ctx)
	if err != nil {
		return nil, err
	}

	matched := filter.Apply(db.Prompts, input.Options)
	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)

	items := make([]PromptSummary, 0, end-start)
	for _, p := range matched[start:end] {
		items = append(items, Summarize(p))
	}

	tags := library.Tags(db.Prompts)
	if tags == nil {
		tags = []string{}
	}

	return &ListOutput{
		Heading: filter.ActiveCollectionName(db.Collections, input.Options),
		Items:   items,
		Tags:    tags,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
	}, nil
}
