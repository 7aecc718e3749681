// Package filter selects prompts for list views.
package filter

import (
	"slices"
	"strings"

	"github.com/hpungsan/prompthive/internal/library"
)

// Names shown for the pseudo-collections.
const (
	AllPromptsName = "All Prompts"
	FavoritesName  = "Favorites"
)

// Options narrows a prompt list. Zero values match everything.
type Options struct {
	Query         string
	Tag           string
	CollectionID  string
	FavoritesOnly bool
}

// Apply returns the prompts matching every active criterion, in input order.
// The query matches case-insensitively against title, body and tags.
func Apply(prompts []library.Prompt, opts Options) []library.Prompt {
	q := Normalize(opts.Query)
	out := []library.Prompt{}
	for _, p := range prompts {
		if opts.FavoritesOnly && !p.IsFavorite {
			continue
		}
		if opts.CollectionID != "" && (p.CollectionID == nil || *p.CollectionID != opts.CollectionID) {
			continue
		}
		if opts.Tag != "" && !slices.Contains(p.Tags, opts.Tag) {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p library.Prompt, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Body), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// ActiveCollectionName is the heading for a filtered view.
func ActiveCollectionName(cols []library.Collection, opts Options) string {
	if opts.FavoritesOnly {
		return FavoritesName
	}
	for _, c := range cols {
		if c.ID == opts.CollectionID && c.Name != "" {
			return c.Name
		}
	}
	return AllPromptsName
}
