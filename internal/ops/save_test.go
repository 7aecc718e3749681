package ops

import (
	"context"
	"reflect"
	"testing"

	"github.com/hpungsan/prompthive/internal/errors"
)

func TestSavePrompt_CreatesAndPrepends(t *testing.T) {
	setNow(t, t1)
	lib := seeded(t, sampleLibrary())

	out, err := SavePrompt(context.Background(), lib, SaveInput{
		Title: "  Translate ",
		Body:  "Translate {{text}} to {{lang}}",
		Tags:  []string{"i18n, writing", " "},
	})
	if err != nil {
		t.Fatalf("SavePrompt failed: %v", err)
	}
	if !out.Created || out.ID == "" {
		t.Fatalf("expected a created prompt, got %+v", out)
	}

	db := lib.load(t)
	if len(db.Prompts) != 3 {
		t.Fatalf("len(Prompts) = %d, want 3", len(db.Prompts))
	}
	p := db.Prompts[0]
	if p.ID != out.ID {
		t.Errorf("new prompt should be first, got %q", p.ID)
	}
	if p.Title != "Translate" {
		t.Errorf("Title = %q, want trimmed", p.Title)
	}
	if !reflect.DeepEqual(p.Tags, []string{"i18n", "writing"}) {
		t.Errorf("Tags = %q", p.Tags)
	}
	if !p.CreatedAt.Equal(t1) || !p.UpdatedAt.Equal(t1) {
		t.Errorf("timestamps = %v/%v, want %v", p.CreatedAt, p.UpdatedAt, t1)
	}
	if p.IsFavorite || p.CollectionID != nil {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if lib.writes != 1 {
		t.Errorf("writes = %d, want 1", lib.writes)
	}
}

func TestSavePrompt_UpdatesInPlace(t *testing.T) {
	setNow(t, t1)
	lib := seeded(t, sampleLibrary())

	out, err := SavePrompt(context.Background(), lib, SaveInput{
		ID:           "p1",
		Title:        "Code review v2",
		Body:         "Review {{language}}",
		ShortPrompt:  strPtr("  short  "),
		CollectionID: strPtr("c2"),
	})
	if err != nil {
		t.Fatalf("SavePrompt failed: %v", err)
	}
	if out.Created {
		t.Error("expected an update")
	}

	db := lib.load(t)
	if len(db.Prompts) != 2 || db.Prompts[0].ID != "p1" {
		t.Fatalf("prompt should stay in place: %+v", db.Prompts)
	}
	p := db.Prompts[0]
	if p.Title != "Code review v2" {
		t.Errorf("Title = %q", p.Title)
	}
	if !p.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, t0)
	}
	if !p.UpdatedAt.Equal(t1) {
		t.Errorf("UpdatedAt = %v, want %v", p.UpdatedAt, t1)
	}
	if !p.IsFavorite {
		t.Error("favorite flag should be kept when not given")
	}
	if p.ShortPrompt == nil || *p.ShortPrompt != "short" {
		t.Errorf("ShortPrompt = %v", p.ShortPrompt)
	}
	if p.CollectionID == nil || *p.CollectionID != "c2" {
		t.Errorf("CollectionID = %v", p.CollectionID)
	}
}

func TestSavePrompt_ExplicitFavoriteAndBlankCollection(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	_, err := SavePrompt(context.Background(), lib, SaveInput{
		ID: "p1", Title: "Code review", Body: "x",
		IsFavorite: boolPtr(false), CollectionID: strPtr("  "),
	})
	if err != nil {
		t.Fatalf("SavePrompt failed: %v", err)
	}
	p := lib.load(t).Prompts[0]
	if p.IsFavorite {
		t.Error("favorite flag should be cleared")
	}
	if p.CollectionID != nil {
		t.Errorf("blank collection should clear the field, got %q", *p.CollectionID)
	}
}

func TestSavePrompt_UnknownIDCreates(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	out, err := SavePrompt(context.Background(), lib, SaveInput{ID: "imported-1", Title: "T", Body: "B"})
	if err != nil {
		t.Fatalf("SavePrompt failed: %v", err)
	}
	if !out.Created || out.ID != "imported-1" {
		t.Errorf("unexpected output: %+v", out)
	}
	if lib.load(t).Prompts[0].ID != "imported-1" {
		t.Error("prompt should be prepended with the given id")
	}
}

func TestSavePrompt_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input SaveInput
	}{
		{"missing title", SaveInput{Title: " ", Body: "b"}},
		{"missing body", SaveInput{Title: "t", Body: "\n"}},
		{"unknown collection", SaveInput{Title: "t", Body: "b", CollectionID: strPtr("nope")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lib := seeded(t, sampleLibrary())
			_, err := SavePrompt(context.Background(), lib, tc.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected INVALID_REQUEST, got %v", err)
			}
			if lib.writes != 0 {
				t.Error("nothing should be written")
			}
		})
	}
}

func TestSavePrompt_PropagatesStorageErrors(t *testing.T) {
	lib := &memLib{readErr: errors.NewUninitialized()}
	_, err := SavePrompt(context.Background(), lib, SaveInput{Title: "t", Body: "b"})
	if !errors.Is(err, errors.ErrUninitialized) {
		t.Errorf("expected UNINITIALIZED, got %v", err)
	}

	lib = &memLib{writeErr: errors.NewPermissionLost("proj", nil)}
	_, err = SavePrompt(context.Background(), lib, SaveInput{Title: "t", Body: "b"})
	if !errors.Is(err, errors.ErrPermissionLost) {
		t.Errorf("expected PERMISSION_LOST, got %v", err)
	}
}
