// Package keywords turns free text into the normalized keyword sets used for
// tagging calls and for searching them.
package keywords

import "strings"

const (
	// MaxKeywords caps the tags stored on a call.
	MaxKeywords = 20
	// MaxQueryTokens caps the tokens of a search query.
	MaxQueryTokens = 10
)

// Normalize splits raw on commas and newlines and returns lowercase, trimmed,
// non-empty tokens in order of first occurrence, at most limit of them.
// A limit <= 0 means no cap.
func Normalize(raw string, limit int) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	return NormalizeList(parts, limit)
}

// NormalizeList applies the Normalize rules to an already split list.
func NormalizeList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		tok := strings.ToLower(strings.TrimSpace(item))
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Keywords normalizes the tags of a call.
func Keywords(raw string) []string {
	return Normalize(raw, MaxKeywords)
}

// Query normalizes a search query.
func Query(raw string) []string {
	return Normalize(raw, MaxQueryTokens)
}
