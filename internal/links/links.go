// Package links validates the optional reference links attached to a call.
package links

import (
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`(?i)^https?://\S+`)

// Result is the outcome of parsing a raw link list.
type Result struct {
	// Links holds the valid links, or nil when none survived.
	Links []string
	// Discarded holds entries that were provided but rejected.
	Discarded []string
}

// Parse splits raw on newlines and commas and keeps entries that look like
// http(s) URLs. When nothing valid remains Links is nil, never an empty
// slice, so the stored value is NULL.
func Parse(raw string) Result {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	return ParseList(parts)
}

// ParseList applies the Parse rules to an already split list.
func ParseList(items []string) Result {
	var res Result
	for _, item := range items {
		s := strings.TrimSpace(item)
		if s == "" {
			continue
		}
		if linkPattern.MatchString(s) {
			res.Links = append(res.Links, s)
		} else {
			res.Discarded = append(res.Discarded, s)
		}
	}
	return res
}

// NormalizeURL prefixes scheme-less URLs with https://. Empty input stays empty.
func NormalizeURL(s string) string {
	x := strings.TrimSpace(s)
	if x == "" {
		return ""
	}
	if linkPattern.MatchString(x) {
		return x
	}
	return "https://" + x
}
