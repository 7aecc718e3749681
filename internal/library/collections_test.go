package library

import (
	"reflect"
	"testing"
)

func parentOf(cols []Collection, id string) *string {
	for _, c := range cols {
		if c.ID == id {
			return c.ParentID
		}
	}
	return nil
}

func TestRepairCollections(t *testing.T) {
	tests := []struct {
		name     string
		input    []Collection
		repaired []string
		roots    []string
	}{
		{
			name: "valid tree untouched",
			input: []Collection{
				{ID: "a", Name: "A"},
				{ID: "b", Name: "B", ParentID: strPtr("a")},
				{ID: "c", Name: "C", ParentID: strPtr("b")},
			},
			roots: []string{"a"},
		},
		{
			name:     "self parent",
			input:    []Collection{{ID: "a", Name: "A", ParentID: strPtr("a")}},
			repaired: []string{"a"},
			roots:    []string{"a"},
		},
		{
			name: "dangling parent",
			input: []Collection{
				{ID: "a", Name: "A", ParentID: strPtr("ghost")},
				{ID: "b", Name: "B", ParentID: strPtr("a")},
			},
			repaired: []string{"a"},
			roots:    []string{"a"},
		},
		{
			name: "two cycle",
			input: []Collection{
				{ID: "a", Name: "A", ParentID: strPtr("b")},
				{ID: "b", Name: "B", ParentID: strPtr("a")},
			},
			repaired: []string{"b"},
			roots:    []string{"b"},
		},
		{
			name: "three cycle with tail",
			input: []Collection{
				{ID: "t", Name: "Tail", ParentID: strPtr("a")},
				{ID: "a", Name: "A", ParentID: strPtr("b")},
				{ID: "b", Name: "B", ParentID: strPtr("c")},
				{ID: "c", Name: "C", ParentID: strPtr("a")},
			},
			repaired: []string{"c"},
			roots:    []string{"c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repaired := RepairCollections(tt.input)

			if !reflect.DeepEqual(repaired, tt.repaired) {
				t.Errorf("repaired = %v, want %v", repaired, tt.repaired)
			}

			var roots []string
			for _, c := range got {
				if c.ParentID == nil {
					roots = append(roots, c.ID)
				}
			}
			if !reflect.DeepEqual(roots, tt.roots) {
				t.Errorf("roots = %v, want %v", roots, tt.roots)
			}

			// Every collection must reach a root.
			for _, c := range got {
				seen := map[string]bool{}
				cur := c.ID
				for p := parentOf(got, cur); p != nil; p = parentOf(got, cur) {
					if seen[cur] {
						t.Fatalf("cycle remains at %s", cur)
					}
					seen[cur] = true
					cur = *p
				}
			}
		})
	}
}

func TestRepairCollections_DoesNotMutateInput(t *testing.T) {
	input := []Collection{{ID: "a", Name: "A", ParentID: strPtr("a")}}
	RepairCollections(input)
	if input[0].ParentID == nil {
		t.Error("input was modified")
	}
}

func TestBuildTree(t *testing.T) {
	cols := []Collection{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", ParentID: strPtr("a")},
		{ID: "c", Name: "C"},
		{ID: "d", Name: "D", ParentID: strPtr("a")},
		{ID: "e", Name: "E", ParentID: strPtr("b")},
	}
	roots := BuildTree(cols)

	if len(roots) != 2 || roots[0].ID != "a" || roots[1].ID != "c" {
		t.Fatalf("roots = %+v", roots)
	}
	a := roots[0]
	if len(a.Children) != 2 || a.Children[0].ID != "b" || a.Children[1].ID != "d" {
		t.Fatalf("a.Children = %+v", a.Children)
	}
	if len(a.Children[0].Children) != 1 || a.Children[0].Children[0].ID != "e" {
		t.Errorf("b.Children = %+v", a.Children[0].Children)
	}
}
