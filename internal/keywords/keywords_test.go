package keywords

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords_Examples(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"dedupe and case", "AI, ai , Bio", []string{"ai", "bio"}},
		{"newlines", "vision\nRobotics\r\nvision", []string{"vision", "robotics"}},
		{"empties", " , ,\n,", []string{}},
		{"inner spaces kept", "computer vision, inorganic chemistry", []string{"computer vision", "inorganic chemistry"}},
		{"first occurrence order", "b,a,B,c,A", []string{"b", "a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.raw))
		})
	}
}

func TestKeywords_Caps(t *testing.T) {
	parts := make([]string, 30)
	for i := range parts {
		parts[i] = fmt.Sprintf("k%02d", i)
	}
	raw := strings.Join(parts, ",")

	got := Keywords(raw)
	assert.Len(t, got, MaxKeywords)
	assert.Equal(t, "k00", got[0])
	assert.Equal(t, "k19", got[MaxKeywords-1])

	assert.Len(t, Query(raw), MaxQueryTokens)
	assert.Len(t, Normalize(raw, 0), 30)
}

func TestKeywords_Idempotent(t *testing.T) {
	inputs := []string{
		"AI, ai , Bio",
		"Deep Learning\nNLP,nlp, ,Graphs",
		strings.Repeat("x,y,z,", 10),
		"",
	}
	for _, raw := range inputs {
		once := Keywords(raw)
		twice := Keywords(strings.Join(once, ","))
		assert.Equal(t, once, twice, "input %q", raw)
		assert.Equal(t, once, NormalizeList(once, MaxKeywords))
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{" Vision ", "VISION", "", "nlp"}, 10)
	assert.Equal(t, []string{"vision", "nlp"}, got)
}
