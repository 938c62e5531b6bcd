package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Allowed(t *testing.T) {
	f := New("nitt.edu")

	tests := []struct {
		email string
		want  bool
	}{
		{"a.b@nitt.edu", true},
		{"user@NITT.EDU", true},
		{"  Prof.X@nitt.edu  ", true},
		{"r2d2@nitt.edu", true},
		{"12345@nitt.edu", false},
		{"user@other.edu", false},
		{"user@sub.nitt.edu", false},
		{"usernitt.edu", false},
		{"a@b@nitt.edu", false},
		{"@nitt.edu", false},
		{"", false},
		{"_-.@nitt.edu", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Allowed(tt.email))
		})
	}
}

func TestFilter_EmptyDomainRejectsEverything(t *testing.T) {
	assert.False(t, Filter{}.Allowed("a@"))
	assert.False(t, Filter{}.Allowed("a@nitt.edu"))
}

func TestFilter_ConfiguredDomain(t *testing.T) {
	f := New(" Example.EDU ")
	assert.True(t, f.Allowed("x@example.edu"))
	assert.False(t, f.Allowed("x@nitt.edu"))
	assert.Contains(t, f.SignInMessage(), "@example.edu")
	assert.Contains(t, f.ResetMessage(), "@example.edu")
}

func TestUsername(t *testing.T) {
	assert.Equal(t, "a.b", Username("a.b@nitt.edu"))
	assert.Equal(t, "nobody", Username("nobody"))
}
