package ops

import (
	"context"
	"reflect"
	"testing"

	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/filter"
)

func TestDeletePrompt(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	out, err := DeletePrompt(context.Background(), lib, DeleteInput{ID: "p1"})
	if err != nil {
		t.Fatalf("DeletePrompt failed: %v", err)
	}
	if !out.Deleted || out.ID != "p1" {
		t.Errorf("unexpected output: %+v", out)
	}
	db := lib.load(t)
	if len(db.Prompts) != 1 || db.Prompts[0].ID != "p2" {
		t.Errorf("unexpected prompts after delete: %+v", db.Prompts)
	}

	_, err = DeletePrompt(context.Background(), lib, DeleteInput{ID: "p1"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	_, err = DeletePrompt(context.Background(), lib, DeleteInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestToggleFavorite(t *testing.T) {
	setNow(t, t1)
	lib := seeded(t, sampleLibrary())

	out, err := ToggleFavorite(context.Background(), lib, "p2")
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !out.IsFavorite {
		t.Error("p2 should now be a favorite")
	}
	p := lib.load(t).Prompts[1]
	if !p.IsFavorite {
		t.Error("favorite flag not persisted")
	}
	if !p.UpdatedAt.Equal(t0) {
		t.Errorf("UpdatedAt changed to %v", p.UpdatedAt)
	}

	out, _ = ToggleFavorite(context.Background(), lib, "p2")
	if out.IsFavorite {
		t.Error("second toggle should clear the flag")
	}

	if _, err := ToggleFavorite(context.Background(), lib, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetPrompt(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	out, err := GetPrompt(context.Background(), lib, "p1")
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if out.ID != "p1" || out.CollectionName != "Engineering" {
		t.Errorf("unexpected output: %+v", out)
	}
	if !reflect.DeepEqual(out.Variables, []string{"language", "focus"}) {
		t.Errorf("Variables = %v", out.Variables)
	}

	out, _ = GetPrompt(context.Background(), lib, "p2")
	if out.CollectionName != "" || len(out.Variables) != 0 {
		t.Errorf("unexpected output for p2: %+v", out)
	}

	if _, err := GetPrompt(context.Background(), lib, "nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestFillPrompt(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	out, err := FillPrompt(context.Background(), lib, FillInput{
		ID:     "p1",
		Values: map[string]string{"language": "Go", "focus": ""},
	})
	if err != nil {
		t.Fatalf("FillPrompt failed: %v", err)
	}
	if out.Text != "Review Go code for {{focus}}" {
		t.Errorf("Text = %q", out.Text)
	}
	if !reflect.DeepEqual(out.Missing, []string{"focus"}) {
		t.Errorf("Missing = %v", out.Missing)
	}

	out, _ = FillPrompt(context.Background(), lib, FillInput{ID: "p2"})
	if out.Text != "Summarize this text" || out.Missing == nil || len(out.Missing) != 0 {
		t.Errorf("unexpected output: %+v", out)
	}
	if lib.writes != 0 {
		t.Error("fill must not write")
	}
}

func TestListPrompts(t *testing.T) {
	lib := seeded(t, sampleLibrary())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   ListInput
		ids     []string
		heading string
	}{
		{"all", ListInput{}, []string{"p1", "p2"}, "All Prompts"},
		{"favorites", ListInput{Options: filter.Options{FavoritesOnly: true}}, []string{"p1"}, "Favorites"},
		{"collection", ListInput{Options: filter.Options{CollectionID: "c1"}}, []string{"p1"}, "Engineering"},
		{"tag", ListInput{Options: filter.Options{Tag: "writing"}}, []string{"p2"}, "All Prompts"},
		{"query", ListInput{Options: filter.Options{Query: "SUMMAR"}}, []string{"p2"}, "All Prompts"},
		{"no match", ListInput{Options: filter.Options{Query: "zzz"}}, []string{}, "All Prompts"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ListPrompts(ctx, lib, tc.input)
			if err != nil {
				t.Fatalf("ListPrompts failed: %v", err)
			}
			ids := []string{}
			for _, item := range out.Items {
				ids = append(ids, item.ID)
			}
			if !reflect.DeepEqual(ids, tc.ids) {
				t.Errorf("ids = %v, want %v", ids, tc.ids)
			}
			if out.Heading != tc.heading {
				t.Errorf("Heading = %q, want %q", out.Heading, tc.heading)
			}
			if !reflect.DeepEqual(out.Tags, []string{"dev", "review", "writing"}) {
				t.Errorf("Tags = %v", out.Tags)
			}
		})
	}
}

func TestListPrompts_Pagination(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	out, err := ListPrompts(context.Background(), lib, ListInput{Limit: 1})
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].ID != "p1" {
		t.Errorf("unexpected first page: %+v", out.Items)
	}
	if !out.Pagination.HasMore || out.Pagination.Total != 2 || out.Pagination.Limit != 1 {
		t.Errorf("unexpected pagination: %+v", out.Pagination)
	}

	out, _ = ListPrompts(context.Background(), lib, ListInput{Limit: 1, Offset: 1})
	if len(out.Items) != 1 || out.Items[0].ID != "p2" || out.Pagination.HasMore {
		t.Errorf("unexpected second page: %+v", out)
	}

	out, _ = ListPrompts(context.Background(), lib, ListInput{Offset: 10, Limit: 10000})
	if len(out.Items) != 0 || out.Pagination.Limit != MaxListLimit {
		t.Errorf("unexpected out-of-range page: %+v", out)
	}
}
