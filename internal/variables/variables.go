// Package variables finds and fills {{name}} placeholders in prompt text.
package variables

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Extract returns the distinct placeholder names in text, trimmed, in first-seen order.
// Placeholders with a blank name are ignored.
func Extract(text string) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Fill substitutes placeholders that have a non-empty value.
// Placeholders without a value are left exactly as written.
func Fill(text string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if v := values[name]; v != "" {
			return v
		}
		return match
	})
}

// Missing returns the names in text that have no non-empty value.
func Missing(text string, values map[string]string) []string {
	var out []string
	for _, name := range Extract(text) {
		if values[name] == "" {
			out = append(out, name)
		}
	}
	return out
}
