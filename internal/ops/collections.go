package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/library"
)

// AddCollectionInput contains parameters for the AddCollection operation.
type AddCollectionInput struct {
	Name     string  // required
	ParentID *string // optional; nil or blank creates a root collection
}

// AddCollection appends a new collection.
func AddCollection(ctx context.Context, lib Library, input AddCollectionInput) (*library.Collection, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	db, err := lib.Read(ctx)
	if err != nil {
		return nil, err
	}

	parentID := cleanOptionalString(input.ParentID)
	if parentID != nil && db.FindCollection(*parentID) == nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("parent collection not found: %s", *parentID))
	}

	c := library.Collection{
		ID:       generateCollectionID(),
		Name:     name,
		ParentID: parentID,
	}
	db.Collections = append(db.Collections, c)

	if err := lib.Write(ctx, db); err != nil {
		return nil, err
	}
	return &c, nil
}

// CollectionsOutput contains the result of the ListCollections operation.
type CollectionsOutput struct {
	Tree         []*library.CollectionNode `json:"tree"`
	Count        int                       `json:"count"`
	PromptCounts map[string]int            `json:"prompt_counts"`
}

// ListCollections returns the collection forest and how many prompts each holds directly.
func ListCollections(ctx context.Context, lib Library) (*CollectionsOutput, error) {
	db, err := lib.Read(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(db.Collections))
	for _, p := range db.Prompts {
		if p.CollectionID != nil {
			counts[*p.CollectionID]++
		}
	}

	tree := library.BuildTree(db.Collections)
	if tree == nil {
		tree = []*library.CollectionNode{}
	}
	return &CollectionsOutput{
		Tree:         tree,
		Count:        len(db.Collections),
		PromptCounts: counts,
	}, nil
}
