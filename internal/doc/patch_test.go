package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch_SetAndUnsetAreExclusive(t *testing.T) {
	p := NewPatch()
	p.SetField("phoneNumber", "0771234567")
	p.UnsetField("phoneNumber")

	assert.Empty(t, p.Set)
	assert.Equal(t, []string{"phoneNumber"}, p.UnsetKeys())

	p.SetField("phoneNumber", "0771234567")
	assert.Empty(t, p.Unset)
	assert.Equal(t, []string{"phoneNumber"}, p.SetKeys())
	require.NoError(t, p.Validate())
}

func TestPatch_ValidateRejectsOverlap(t *testing.T) {
	p := &Patch{
		Set:   map[string]any{"email": "a@x.com"},
		Unset: map[string]struct{}{"email": {}},
	}
	require.Error(t, p.Validate())
}

func TestPatch_IsEmpty(t *testing.T) {
	var nilPatch *Patch
	assert.True(t, nilPatch.IsEmpty())
	assert.True(t, NewPatch().IsEmpty())
	assert.True(t, (&Patch{}).IsEmpty())

	p := NewPatch()
	p.UnsetField("zip")
	assert.False(t, p.IsEmpty())
}

func TestPatch_KeysSorted(t *testing.T) {
	p := NewPatch()
	p.SetField("status", "ACTIVE")
	p.SetField("address", map[string]any{})
	p.SetField("email", "a@x.com")
	p.UnsetField("zip")
	p.UnsetField("city")

	assert.Equal(t, []string{"address", "email", "status"}, p.SetKeys())
	assert.Equal(t, []string{"city", "zip"}, p.UnsetKeys())
}

func TestApply(t *testing.T) {
	r := Record{ID: "p1", Fields: map[string]any{
		"phone": "+94771234567",
		"name":  "kamal",
	}}
	p := NewPatch()
	p.SetField("phoneNumber", "0771234567")
	p.SetField("name", "Kamal")
	p.UnsetField("phone")

	out := Apply(r, p)
	assert.Equal(t, map[string]any{"phoneNumber": "0771234567", "name": "Kamal"}, out.Fields)
	assert.Equal(t, "p1", out.ID)
	// Original untouched.
	assert.Equal(t, "+94771234567", r.Fields["phone"])
	assert.Equal(t, "kamal", r.Fields["name"])
}

func TestChanges(t *testing.T) {
	r := Record{ID: "p1", Fields: map[string]any{
		"rating": float64(4),
		"status": "ACTIVE",
		"legacy": nil,
	}}

	tests := []struct {
		name  string
		build func(*Patch)
		want  bool
	}{
		{"empty", func(*Patch) {}, false},
		{"same value", func(p *Patch) { p.SetField("status", "ACTIVE") }, false},
		{"int equals stored float", func(p *Patch) { p.SetField("rating", 4) }, false},
		{"new value", func(p *Patch) { p.SetField("status", "PENDING") }, true},
		{"new field", func(p *Patch) { p.SetField("type", "OTHER") }, true},
		{"unset absent", func(p *Patch) { p.UnsetField("zip") }, false},
		{"unset null field", func(p *Patch) { p.UnsetField("legacy") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPatch()
			tt.build(p)
			assert.Equal(t, tt.want, Changes(r, p))
		})
	}
}

func TestBulkResult_Add(t *testing.T) {
	r := BulkResult{Modified: 2, Failed: 1}
	r.Add(BulkResult{Modified: 3})
	assert.Equal(t, BulkResult{Modified: 5, Failed: 1}, r)
}
