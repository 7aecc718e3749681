package ops

import (
	"context"

	"github.com/hpungsan/prompthive/internal/capability"
	"github.com/hpungsan/prompthive/internal/library"
)

// StatusSource is the part of the storage gateway Status needs.
type StatusSource interface {
	Ready() bool
	Active() (capability.Record, bool)
	StoredLabel(ctx context.Context) (string, bool)
	Read(ctx context.Context) (*library.Database, error)
}

// StatusOutput describes the active project folder and library size.
type StatusOutput struct {
	Ready       bool   `json:"ready"`
	Folder      string `json:"folder,omitempty"`
	Path        string `json:"path,omitempty"`
	StoredLabel string `json:"stored_label,omitempty"`
	Version     int    `json:"version,omitempty"`
	Prompts     int    `json:"prompts"`
	Favorites   int    `json:"favorites"`
	Collections int    `json:"collections"`
	Tags        int    `json:"tags"`
}

// Status reports the gateway state. When a folder is active the library is
// read to fill in the counts, and read errors are returned.
func Status(ctx context.Context, src StatusSource) (*StatusOutput, error) {
	out := &StatusOutput{}
	if label, ok := src.StoredLabel(ctx); ok {
		out.StoredLabel = label
	}
	if !src.Ready() {
		return out, nil
	}
	out.Ready = true
	if rec, ok := src.Active(); ok {
		out.Folder = rec.Name
		out.Path = rec.Path
	}

	db, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	out.Version = db.Version
	out.Prompts = len(db.Prompts)
	out.Collections = len(db.Collections)
	out.Tags = len(library.Tags(db.Prompts))
	for _, p := range db.Prompts {
		if p.IsFavorite {
			out.Favorites++
		}
	}
	return out, nil
}
