package normalize

// Nested address sub-fields.
const (
	AddressLine1      = "line1"
	AddressCity       = "city"
	AddressDistrict   = "district"
	AddressProvince   = "province"
	AddressPostalCode = "postalCode"
)

// addressSource lists, per nested sub-field, the keys it may be read from:
// first inside an existing nested object, then at the record root.
type addressSource struct {
	sub       string
	nested    []string
	legacy    []string
	normalize func(any) (string, bool)
}

var addressSources = []addressSource{
	{AddressLine1, []string{"line1", "street"}, []string{"addressLine1", "address", "street"}, Title},
	{AddressCity, []string{"city"}, []string{"city"}, Title},
	{AddressDistrict, []string{"district"}, []string{"district"}, Title},
	{AddressProvince, []string{"province"}, []string{"province"}, Province.Normalize},
	{AddressPostalCode, []string{"postalCode", "zip", "postcode"}, []string{"postalCode", "zip", "postcode"}, PostalCode},
}

// Address merges a legacy flat address at the record root with an existing
// nested "address" object, nested values winning, and returns the canonical
// nested object. It is all-or-nothing: ok is false unless every sub-field
// resolved to a canonical value. Unknown keys of the nested object are kept.
//
// superseded lists the root keys the nested object replaces: the alias each
// sub-field was read from, plus any other alias holding the same canonical
// value. An alias with a different value is left in place. The root
// "address" key is never listed; it is overwritten.
func Address(fields map[string]any) (out map[string]any, superseded []string, ok bool) {
	nested, _ := fields["address"].(map[string]any)

	out = make(map[string]any, len(addressSources))
	for k, v := range nested {
		out[k] = v
	}
	for _, src := range addressSources {
		value, used, ok := resolveAddressPart(src, nested, fields)
		if !ok {
			return nil, nil, false
		}
		for _, alias := range src.nested {
			delete(out, alias)
		}
		out[src.sub] = value
		for _, key := range src.legacy {
			if key == "address" {
				continue
			}
			if key == used || sameAddressValue(src, fields[key], value) {
				superseded = append(superseded, key)
			}
		}
	}
	return out, superseded, true
}

func sameAddressValue(src addressSource, raw any, value string) bool {
	raw, ok := present(raw)
	if !ok {
		return false
	}
	v, ok := src.normalize(raw)
	return ok && v == value
}

// resolveAddressPart returns the canonical sub-field value and the root key
// it was read from, or "" when it came from the nested object.
func resolveAddressPart(src addressSource, nested, root map[string]any) (string, string, bool) {
	for _, key := range src.nested {
		if raw, ok := present(nested[key]); ok {
			// A present but broken nested value is not replaced by legacy data.
			v, ok := src.normalize(raw)
			return v, "", ok
		}
	}
	for _, key := range src.legacy {
		raw, ok := present(root[key])
		if !ok {
			continue
		}
		if _, isObject := raw.(map[string]any); isObject {
			continue
		}
		v, ok := src.normalize(raw)
		return v, key, ok
	}
	return "", "", false
}

func present(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		if CollapseSpace(val) == "" {
			return nil, false
		}
	}
	return v, true
}
