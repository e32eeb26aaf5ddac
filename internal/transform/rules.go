package transform

import (
	"github.com/roach88/docmigrate/internal/doc"
	"github.com/roach88/docmigrate/internal/normalize"
)

func (t *Transformer) name(r doc.Record, p *doc.Patch) error {
	if raw, ok := r.Lookup(FieldName); ok {
		if v, ok := normalize.Title(raw); ok {
			setIfChanged(r, p, FieldName, v)
		}
	}
	return nil
}

func (t *Transformer) email(r doc.Record, p *doc.Patch) error {
	if raw, ok := r.Lookup(FieldEmail); ok {
		if v, ok := normalize.Email(raw); ok {
			setIfChanged(r, p, FieldEmail, v)
		}
	}
	return nil
}

// phone canonicalizes phoneNumber, falling back to the legacy phone field.
// Once phoneNumber resolves, the legacy field is superseded and removed.
func (t *Transformer) phone(r doc.Record, p *doc.Patch) error {
	raw, ok := r.Lookup(FieldPhoneNumber)
	if !ok {
		raw, ok = r.Lookup(FieldPhone)
	}
	if !ok {
		return nil
	}
	v, ok := normalize.Phone(raw)
	if !ok {
		return nil
	}
	setIfChanged(r, p, FieldPhoneNumber, v)
	unsetIfPresent(r, p, FieldPhone)
	return nil
}

// enumField canonicalizes an enum. A missing value gets def; a present
// value outside the set is left alone.
func enumField(r doc.Record, p *doc.Patch, field string, e *normalize.Enum, def string) {
	raw, ok := r.Lookup(field)
	if !ok {
		setIfChanged(r, p, field, def)
		return
	}
	if v, ok := e.Normalize(raw); ok {
		setIfChanged(r, p, field, v)
	}
}

func (t *Transformer) status(r doc.Record, p *doc.Patch) error {
	enumField(r, p, FieldStatus, normalize.Status, DefaultStatus)
	return nil
}

func (t *Transformer) providerType(r doc.Record, p *doc.Patch) error {
	enumField(r, p, FieldType, normalize.ProviderType, DefaultType)
	return nil
}

// code canonicalizes an existing identifier or generates one when the
// record has none. Generation depends on the canonical type, so this rule
// runs after providerType.
func (t *Transformer) code(r doc.Record, p *doc.Patch) error {
	if raw, ok := r.Lookup(FieldCode); ok {
		if v, ok := normalize.Code(raw); ok {
			setIfChanged(r, p, FieldCode, v)
		}
		return nil
	}
	providerType := DefaultType
	if v, ok := canonical(r, p, FieldType); ok {
		if s, ok := v.(string); ok && normalize.ProviderType.Contains(s) {
			providerType = s
		}
	}
	if v, ok := normalize.Identifier(providerType, t.createdAt(r), r.ID); ok {
		p.SetField(FieldCode, v)
	}
	return nil
}

// address promotes legacy root fields into the nested address and removes
// the ones it replaced. When the address is incomplete nothing is promoted
// and the legacy fields are canonicalized where they are.
func (t *Transformer) address(r doc.Record, p *doc.Patch) error {
	if addr, superseded, ok := normalize.Address(r.Fields); ok {
		setIfChanged(r, p, FieldAddress, addr)
		for _, legacy := range superseded {
			unsetIfPresent(r, p, legacy)
		}
		return nil
	}

	inPlace := []struct {
		field     string
		normalize func(any) (string, bool)
	}{
		{normalize.AddressCity, normalize.Title},
		{normalize.AddressDistrict, normalize.Title},
		{normalize.AddressProvince, normalize.Province.Normalize},
	}
	for _, f := range inPlace {
		if raw, ok := r.Lookup(f.field); ok {
			if v, ok := f.normalize(raw); ok {
				setIfChanged(r, p, f.field, v)
			}
		}
	}

	for _, key := range []string{normalize.AddressPostalCode, "zip", "postcode"} {
		raw, ok := r.Lookup(key)
		if !ok {
			continue
		}
		if v, ok := normalize.PostalCode(raw); ok {
			setIfChanged(r, p, normalize.AddressPostalCode, v)
			if key != normalize.AddressPostalCode {
				unsetIfPresent(r, p, key)
			}
		}
		break
	}
	return nil
}

func (t *Transformer) rating(r doc.Record, p *doc.Patch) error {
	if raw, ok := r.Lookup(FieldRating); ok {
		if v, ok := normalize.ClampMin(raw, MinRating); ok {
			setIfChanged(r, p, FieldRating, v)
		}
	}
	return nil
}

func (t *Transformer) services(r doc.Record, p *doc.Patch) error {
	raw, ok := r.Lookup(FieldServices)
	if !ok {
		return nil
	}
	repaired, changed, ok := normalize.RepairServices(raw, normalize.ListDefaults{
		CreatedAt: t.createdAt(r),
		IDs:       t.opts.IDs,
	})
	if ok && changed {
		p.SetField(FieldServices, repaired)
	}
	return nil
}

func (t *Transformer) password(r doc.Record, p *doc.Patch) error {
	raw, ok := r.Lookup(FieldPassword)
	if !ok {
		return nil
	}
	v, ok, err := normalize.Password(raw, t.opts.HashCost)
	if err != nil {
		return err
	}
	if ok {
		setIfChanged(r, p, FieldPassword, v)
	}
	return nil
}
