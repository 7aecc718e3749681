package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/prompthive/internal/errors"
)

func TestAddCollection(t *testing.T) {
	lib := seeded(t, sampleLibrary())
	ctx := context.Background()

	c, err := AddCollection(ctx, lib, AddCollectionInput{Name: " Frontend ", ParentID: strPtr("c1")})
	if err != nil {
		t.Fatalf("AddCollection failed: %v", err)
	}
	if c.Name != "Frontend" || c.ID == "" || c.ParentID == nil || *c.ParentID != "c1" {
		t.Errorf("unexpected collection: %+v", c)
	}

	db := lib.load(t)
	if len(db.Collections) != 3 || db.Collections[2].ID != c.ID {
		t.Errorf("collection should be appended: %+v", db.Collections)
	}

	root, err := AddCollection(ctx, lib, AddCollectionInput{Name: "Misc", ParentID: strPtr("")})
	if err != nil {
		t.Fatalf("AddCollection failed: %v", err)
	}
	if root.ParentID != nil {
		t.Error("blank parent should create a root collection")
	}
}

func TestAddCollection_Validation(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	_, err := AddCollection(context.Background(), lib, AddCollectionInput{Name: " "})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for blank name, got %v", err)
	}
	_, err = AddCollection(context.Background(), lib, AddCollectionInput{Name: "x", ParentID: strPtr("missing")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for unknown parent, got %v", err)
	}
	if lib.writes != 0 {
		t.Error("nothing should be written")
	}
}

func TestListCollections(t *testing.T) {
	lib := seeded(t, sampleLibrary())

	out, err := ListCollections(context.Background(), lib)
	if err != nil {
		t.Fatalf("ListCollections failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
	if len(out.Tree) != 1 || out.Tree[0].ID != "c1" {
		t.Fatalf("unexpected roots: %+v", out.Tree)
	}
	if len(out.Tree[0].Children) != 1 || out.Tree[0].Children[0].ID != "c2" {
		t.Errorf("unexpected children: %+v", out.Tree[0].Children)
	}
	if out.PromptCounts["c1"] != 1 || out.PromptCounts["c2"] != 0 {
		t.Errorf("PromptCounts = %v", out.PromptCounts)
	}

	empty, err := ListCollections(context.Background(), &memLib{})
	if err != nil {
		t.Fatalf("ListCollections failed: %v", err)
	}
	if empty.Tree == nil || len(empty.Tree) != 0 {
		t.Errorf("expected empty non-nil tree, got %#v", empty.Tree)
	}
}
