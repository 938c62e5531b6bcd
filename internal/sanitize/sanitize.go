package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// maxPasses bounds the sanitize/decode rounds for nested entity encodings.
const maxPasses = 8

// Text strips markup from user-entered free text and trims it. Values are
// stored as plain text, so entities are decoded and the result sanitized
// again until it no longer changes. Markup smuggled in as entities is
// stripped like literal markup.
func Text(s string) string {
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// Still changing after maxPasses: keep the policy output escaped.
	return strings.TrimSpace(policy.Sanitize(out))
}

// OptionalText is Text for nullable fields; blank input becomes nil.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	if out == "" {
		return nil
	}
	return &out
}
