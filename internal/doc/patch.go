package doc

import (
	"fmt"
	"sort"
)

// Patch is a partial update for one record.
// Use SetField and UnsetField to build it; they keep Set and Unset disjoint.
type Patch struct {
	Set   map[string]any
	Unset map[string]struct{}
}

// NewPatch returns an empty patch.
func NewPatch() *Patch {
	return &Patch{
		Set:   map[string]any{},
		Unset: map[string]struct{}{},
	}
}

// SetField records a new canonical value for field.
func (p *Patch) SetField(field string, value any) {
	if p.Set == nil {
		p.Set = map[string]any{}
	}
	delete(p.Unset, field)
	p.Set[field] = value
}

// UnsetField records that field must be removed.
func (p *Patch) UnsetField(field string) {
	if p.Unset == nil {
		p.Unset = map[string]struct{}{}
	}
	delete(p.Set, field)
	p.Unset[field] = struct{}{}
}

// IsEmpty reports whether applying the patch would change nothing.
func (p *Patch) IsEmpty() bool {
	return p == nil || (len(p.Set) == 0 && len(p.Unset) == 0)
}

// SetKeys returns the fields in Set, sorted.
func (p *Patch) SetKeys() []string {
	keys := make([]string, 0, len(p.Set))
	for k := range p.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnsetKeys returns the fields in Unset, sorted.
func (p *Patch) UnsetKeys() []string {
	keys := make([]string, 0, len(p.Unset))
	for k := range p.Unset {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that no field is both set and unset.
// Patches built with SetField/UnsetField always pass.
func (p *Patch) Validate() error {
	if p == nil {
		return nil
	}
	for field := range p.Unset {
		if _, ok := p.Set[field]; ok {
			return fmt.Errorf("field %q is both set and unset", field)
		}
	}
	return nil
}

// Apply returns the record as it would look after the patch is written.
// r is not modified.
func Apply(r Record, p *Patch) Record {
	out := r.Clone()
	if p == nil {
		return out
	}
	for field, value := range p.Set {
		out.Fields[field] = value
	}
	for field := range p.Unset {
		delete(out.Fields, field)
	}
	return out
}

// Changes reports whether applying p to r modifies the stored document.
func Changes(r Record, p *Patch) bool {
	if p.IsEmpty() {
		return false
	}
	for field := range p.Unset {
		if r.Has(field) {
			return true
		}
	}
	for field, value := range p.Set {
		current, ok := r.Fields[field]
		if !ok || !Equal(current, value) {
			return true
		}
	}
	return false
}
