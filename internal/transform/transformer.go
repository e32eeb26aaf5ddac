// Package transform turns one raw provider record into the minimal patch
// that brings it to the canonical schema.
//
// Transform is idempotent: transforming the result of applying its own
// patch yields an empty patch. That property is what makes re-running a
// migration after a partial failure safe.
package transform

import (
	"slices"
	"time"

	"github.com/roach88/docmigrate/internal/doc"
	"github.com/roach88/docmigrate/internal/normalize"
)

// Provider document fields.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldPhone       = "phone" // legacy alias of phoneNumber
	FieldStatus      = "status"
	FieldType        = "type"
	FieldCode        = "code"
	FieldCreatedAt   = "createdAt"
	FieldAddress     = "address"
	FieldRating      = "rating"
	FieldServices    = "services"
	FieldPassword    = "password"
)

// Defaults applied when an enum field is missing altogether.
const (
	DefaultStatus = normalize.StatusPending
	DefaultType   = normalize.TypeOther
	MinRating     = 0
)

// Options configures a Transformer.
type Options struct {
	// HashCost is the bcrypt cost for plain-text passwords.
	HashCost int

	// Now stamps generated identifiers and list elements of records that
	// carry no createdAt. Fixed per run.
	Now time.Time

	// IDs generates ids for nested list elements.
	IDs normalize.IDGenerator
}

// Transformer applies the provider normalizers to records.
// It holds no per-record state and has no side effects.
type Transformer struct {
	opts  Options
	rules []rule
}

// rule contributes the patch entries for one field or field group.
type rule struct {
	field string
	apply func(t *Transformer, r doc.Record, p *doc.Patch) error
}

// New creates a Transformer. Zero options get defaults: hash cost 10, the
// current time and UUIDv7 ids.
func New(opts Options) *Transformer {
	if opts.HashCost == 0 {
		opts.HashCost = normalize.DefaultHashCost
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.IDs == nil {
		opts.IDs = normalize.UUIDv7Generator{}
	}
	return &Transformer{
		opts: opts,
		rules: []rule{
			{FieldName, (*Transformer).name},
			{FieldEmail, (*Transformer).email},
			{FieldPhoneNumber, (*Transformer).phone},
			{FieldStatus, (*Transformer).status},
			{FieldType, (*Transformer).providerType},
			{FieldCode, (*Transformer).code},
			{FieldAddress, (*Transformer).address},
			{FieldRating, (*Transformer).rating},
			{FieldServices, (*Transformer).services},
			{FieldPassword, (*Transformer).password},
		},
	}
}

// Transform computes the patch for r. Fields no normalizer can repair are
// left out of the patch; only a whole-record failure returns an error,
// always a *RecordError.
func (t *Transformer) Transform(r doc.Record) (*doc.Patch, error) {
	if r.ID == "" {
		return nil, &RecordError{Err: ErrMissingID}
	}
	p := doc.NewPatch()
	for _, rl := range t.rules {
		if err := rl.apply(t, r, p); err != nil {
			return nil, &RecordError{RecordID: r.ID, Field: rl.field, Err: err}
		}
	}
	if err := p.Validate(); err != nil {
		return nil, &RecordError{RecordID: r.ID, Err: err}
	}
	return p, nil
}

// keyRules lists the rules that decide a key field's migrated value.
// Code depends on the canonical type for its prefix.
var keyRules = map[string][]string{
	FieldEmail: {FieldEmail},
	FieldCode:  {FieldType, FieldCode},
}

// Canonical returns the value field will hold once r is migrated, without
// running the expensive or id-consuming rules. Only email and code are
// supported; other fields report false.
func (t *Transformer) Canonical(r doc.Record, field string) (any, bool) {
	deps, ok := keyRules[field]
	if !ok || r.ID == "" {
		return nil, false
	}
	p := doc.NewPatch()
	for _, rl := range t.rules {
		if !slices.Contains(deps, rl.field) {
			continue
		}
		if err := rl.apply(t, r, p); err != nil {
			return nil, false
		}
	}
	return canonical(r, p, field)
}

// setIfChanged adds field to the patch unless the record already holds an
// equal value.
func setIfChanged(r doc.Record, p *doc.Patch, field string, value any) {
	if current, ok := r.Fields[field]; ok && doc.Equal(current, value) {
		return
	}
	p.SetField(field, value)
}

// unsetIfPresent removes a superseded field; absent fields stay out of the
// patch so re-runs produce nothing.
func unsetIfPresent(r doc.Record, p *doc.Patch, field string) {
	if r.Has(field) {
		p.UnsetField(field)
	}
}

// canonical returns the value a field will have once p is applied.
func canonical(r doc.Record, p *doc.Patch, field string) (any, bool) {
	if v, ok := p.Set[field]; ok {
		return v, true
	}
	return r.Lookup(field)
}

// createdAt is the record's creation time, or the run start.
func (t *Transformer) createdAt(r doc.Record) time.Time {
	if raw, ok := r.Lookup(FieldCreatedAt); ok {
		if ts, ok := normalize.Timestamp(raw); ok {
			return ts
		}
	}
	return t.opts.Now
}
