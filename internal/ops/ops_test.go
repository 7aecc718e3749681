package ops

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/hpungsan/prompthive/internal/library"
)

// memLib keeps the encoded document in memory, so every call goes through the codec.
type memLib struct {
	data     []byte
	writes   int
	readErr  error
	writeErr error
}

func (m *memLib) Read(context.Context) (*library.Database, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.data == nil {
		return library.Default(), nil
	}
	return library.Decode(m.data)
}

func (m *memLib) Write(_ context.Context, db *library.Database) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	data, err := library.Encode(db)
	if err != nil {
		return err
	}
	m.data = data
	m.writes++
	return nil
}

func (m *memLib) load(t *testing.T) *library.Database {
	t.Helper()
	db, err := m.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return db
}

func seeded(t *testing.T, db *library.Database) *memLib {
	t.Helper()
	m := &memLib{}
	if err := m.Write(context.Background(), db); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	m.writes = 0
	return m
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

var (
	t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
)

// setNow pins the clock used for timestamps.
func setNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func sampleLibrary() *library.Database {
	return &library.Database{
		Version: 1,
		Prompts: []library.Prompt{
			{
				ID: "p1", Title: "Code review", Body: "Review {{language}} code for {{focus}}",
				Tags: []string{"dev", "review"}, IsFavorite: true, CollectionID: strPtr("c1"),
				CreatedAt: library.At(t0), UpdatedAt: library.At(t0),
			},
			{
				ID: "p2", Title: "Summarize", Body: "Summarize this text",
				Tags: []string{"writing"}, CreatedAt: library.At(t0), UpdatedAt: library.At(t0),
			},
		},
		Collections: []library.Collection{
			{ID: "c1", Name: "Engineering"},
			{ID: "c2", Name: "Backend", ParentID: strPtr("c1")},
		},
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"comma separated", []string{"a, b ,c"}, []string{"a", "b", "c"}},
		{"blanks dropped", []string{" , a,, "}, []string{"a"}},
		{"duplicates across entries", []string{"a,b", "b", "c,a"}, []string{"a", "b", "c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTags(tc.in...)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseTags(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	p := sampleLibrary().Prompts[0]
	s := Summarize(p)

	if s.ID != "p1" || s.Title != "Code review" || !s.IsFavorite {
		t.Errorf("unexpected summary: %+v", s)
	}
	if !reflect.DeepEqual(s.Variables, []string{"language", "focus"}) {
		t.Errorf("Variables = %v", s.Variables)
	}
	if s.BodyChars != len([]rune(p.Body)) {
		t.Errorf("BodyChars = %d", s.BodyChars)
	}
	if s.TokensEstimate <= 0 {
		t.Errorf("TokensEstimate = %d, want > 0", s.TokensEstimate)
	}

	empty := Summarize(library.Prompt{ID: "x"})
	if empty.Tags == nil || empty.Variables == nil {
		t.Error("summary slices should be non-nil")
	}
}

func TestGenerateIDs(t *testing.T) {
	a, err := generateULID()
	if err != nil {
		t.Fatalf("generateULID failed: %v", err)
	}
	if len(a) != 26 {
		t.Errorf("ULID length = %d, want 26", len(a))
	}
	if b, _ := generateULID(); a == b {
		t.Error("ULIDs should be unique")
	}

	c := generateCollectionID()
	if len(c) != 36 || c == generateCollectionID() {
		t.Errorf("unexpected collection id %q", c)
	}
}
