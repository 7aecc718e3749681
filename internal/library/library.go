// Package library defines the prompt library document that lives in
// database.json, and how it is encoded, decoded and repaired.
package library

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 1

// KnownVersions is the closed set of schema versions this build can read.
// Add an entry (and a migration) before bumping CurrentVersion.
var KnownVersions = map[int]bool{
	1: true,
}

// Database is the single root document of a project folder.
type Database struct {
	Version     int          `json:"version" yaml:"version"`
	Prompts     []Prompt     `json:"prompts" yaml:"prompts" jsonschema:"required"`
	Collections []Collection `json:"collections" yaml:"collections" jsonschema:"required"`
}

// Prompt is a stored prompt with its metadata.
// Ids are generated by the caller; the storage layer never validates them.
type Prompt struct {
	ID          string `json:"id" yaml:"id" jsonschema:"required"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Body        string `json:"body" yaml:"body"`

	ShortPrompt    *string `json:"shortPrompt,omitempty" yaml:"shortPrompt,omitempty"`
	ExampleOutput  *string `json:"exampleOutput,omitempty" yaml:"exampleOutput,omitempty"`
	ExpectedResult *string `json:"expectedResult,omitempty" yaml:"expectedResult,omitempty"`
	IsFavorite     bool    `json:"isFavorite,omitempty" yaml:"isFavorite,omitempty"`

	// Tags are logically a set; order and duplicates are preserved as stored.
	Tags         []string `json:"tags" yaml:"tags"`
	CollectionID *string  `json:"collectionId,omitempty" yaml:"collectionId,omitempty" jsonschema:"oneof_type=string;null"`

	CreatedAt Timestamp `json:"createdAt" yaml:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt" yaml:"updatedAt"`
}

// Collection is a node in the collection forest. A nil ParentID is a root.
type Collection struct {
	ID       string  `json:"id" yaml:"id" jsonschema:"required"`
	Name     string  `json:"name" yaml:"name" jsonschema:"required"`
	ParentID *string `json:"parentId,omitempty" yaml:"parentId,omitempty" jsonschema:"oneof_type=string;null"`
}

// Default returns a fresh empty document.
func Default() *Database {
	return &Database{
		Version:     CurrentVersion,
		Prompts:     []Prompt{},
		Collections: []Collection{},
	}
}

// Clone returns a copy of db whose slices can be modified without touching db.
// Prompt and collection values are copied; pointer fields are shared.
func (db *Database) Clone() *Database {
	if db == nil {
		return nil
	}
	out := &Database{
		Version:     db.Version,
		Prompts:     make([]Prompt, len(db.Prompts)),
		Collections: make([]Collection, len(db.Collections)),
	}
	copy(out.Collections, db.Collections)
	for i, p := range db.Prompts {
		p.Tags = append([]string{}, p.Tags...)
		out.Prompts[i] = p
	}
	return out
}

// FindPrompt returns the index of the prompt with the given id, or -1.
func (db *Database) FindPrompt(id string) int {
	for i := range db.Prompts {
		if db.Prompts[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCollection returns the collection with the given id, or nil.
func (db *Database) FindCollection(id string) *Collection {
	for i := range db.Collections {
		if db.Collections[i].ID == id {
			return &db.Collections[i]
		}
	}
	return nil
}

// normalize replaces nil slices with empty ones so documents encode as [] not null.
func (db *Database) normalize() {
	if db.Prompts == nil {
		db.Prompts = []Prompt{}
	}
	if db.Collections == nil {
		db.Collections = []Collection{}
	}
	for i := range db.Prompts {
		if db.Prompts[i].Tags == nil {
			db.Prompts[i].Tags = []string{}
		}
	}
}
