package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
		ok   bool
	}{
		{"collapses whitespace", "  colombo   fort ", "Colombo Fort", true},
		{"lowers shouting", "KAMAL PERERA", "Kamal Perera", true},
		{"tabs and newlines", "nuwara\t\neliya", "Nuwara Eliya", true},
		{"already canonical", "Kandy", "Kandy", true},
		{"blank", "   ", "", false},
		{"not a string", 42.0, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Title(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitle_Idempotent(t *testing.T) {
	first, ok := Title("  sri   jayawardenepura kotte ")
	assert.True(t, ok)
	second, ok := Title(first)
	assert.True(t, ok)
	assert.Equal(t, first, second)
}

func TestEmail(t *testing.T) {
	tests := []struct {
		raw  any
		want string
		ok   bool
	}{
		{"  Kamal.Perera@Example.COM ", "kamal.perera@example.com", true},
		{"a@x.com", "a@x.com", true},
		{"ax.com", "", false},
		{"a@@x.com", "", false},
		{"@x.com", "", false},
		{"a@", "", false},
		{"a b@x.com", "", false},
		{"", "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := Email(tt.raw)
		assert.Equal(t, tt.ok, ok, "Email(%v)", tt.raw)
		assert.Equal(t, tt.want, got, "Email(%v)", tt.raw)
	}
}

func TestEmail_UnicodeAndWhitespaceVariants(t *testing.T) {
	for _, raw := range []string{"élise@x.com", "ÉLISE@x.com", "E\u0301LISE@x.com", "élise@x.com\t"} {
		got, ok := Email(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, "élise@x.com", got, raw)
	}
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a \t b\n\nc  "))
	assert.Equal(t, "", CollapseSpace(" \t "))
}
