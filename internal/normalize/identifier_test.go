package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		created  time.Time
		recordID string
		want     string
	}{
		{"epoch", TypeOther, time.UnixMilli(0), "abc", "PRV-000000-0ABC"},
		{"short timestamp", TypeSalon, time.UnixMilli(35), "prv-00123", "SLN-00000Z-0123"},
		{"wraps to six digits", TypeClinic, time.UnixMilli(2176782336), "x1", "CLN-000000-00X1"},
		{"unknown type", "RESTAURANT", time.UnixMilli(36), "9", "PRV-000010-0009"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Identifier(tt.typ, tt.created, tt.recordID)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifier_Deterministic(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	a, ok := Identifier(TypeSpa, created, "65f1c0ffee")
	assert.True(t, ok)
	b, _ := Identifier(TypeSpa, created, "65f1c0ffee")
	assert.Equal(t, a, b)
	assert.Regexp(t, `^SPA-[0-9A-Z]{6}-FFEE$`, a)
}

func TestIdentifier_Unbuildable(t *testing.T) {
	_, ok := Identifier(TypeSpa, time.Time{}, "abc")
	assert.False(t, ok)
	_, ok = Identifier(TypeSpa, time.UnixMilli(1), "---")
	assert.False(t, ok)
}

func TestIdentifierPrefix(t *testing.T) {
	assert.Equal(t, "IND", IdentifierPrefix(TypeIndividual))
	assert.Equal(t, "FIT", IdentifierPrefix(TypeFitness))
	assert.Equal(t, "PRV", IdentifierPrefix(""))
}

func TestCode(t *testing.T) {
	got, ok := Code("  sln-0a1b2c - 0123 ")
	assert.True(t, ok)
	assert.Equal(t, "SLN-0A1B2C-0123", got)
	_, ok = Code(" ")
	assert.False(t, ok)
}

func TestTimestamp(t *testing.T) {
	ts, ok := Timestamp("2024-03-01T08:30:00Z")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), ts.UTC())

	_, ok = Timestamp("01/03/2024")
	assert.False(t, ok)
	_, ok = Timestamp(1709281800.0)
	assert.False(t, ok)
}
