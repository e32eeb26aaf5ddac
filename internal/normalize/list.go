package normalize

import "time"

// Nested service element fields.
const (
	ElementID        = "_id"
	ElementCreatedAt = "createdAt"
	ElementUpdatedAt = "updatedAt"
	ElementIsActive  = "isActive"
	ElementDuration  = "durationMinutes"
	ElementPrice     = "price"
)

// Domain minimums for service elements.
const (
	MinDurationMinutes = 5
	MinPrice           = 0
)

// ListDefaults supplies the values synthesized for incomplete elements.
type ListDefaults struct {
	// CreatedAt stamps elements without a creation time. Usually the parent
	// record's createdAt, falling back to the run start.
	CreatedAt time.Time
	IDs       IDGenerator
}

// RepairServices fills the gaps of a nested services list:
//   - missing _id: a fresh id from defaults.IDs
//   - missing createdAt: defaults.CreatedAt
//   - missing updatedAt: the element's createdAt
//   - isActive not a bool: parsed from "true"/"false"-like strings, else true
//   - durationMinutes/price below their minimum: clamped
//
// Well-formed elements and non-object elements are returned untouched.
// changed reports whether any element differs from the input; ok is false
// when raw is not a list.
func RepairServices(raw any, defaults ListDefaults) (repaired []any, changed bool, ok bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false, false
	}
	repaired = make([]any, len(list))
	for i, elem := range list {
		obj, isObject := elem.(map[string]any)
		if !isObject {
			repaired[i] = elem
			continue
		}
		fixed, elemChanged := repairElement(obj, defaults)
		repaired[i] = fixed
		changed = changed || elemChanged
	}
	return repaired, changed, true
}

func repairElement(obj map[string]any, defaults ListDefaults) (map[string]any, bool) {
	out := make(map[string]any, len(obj)+4)
	for k, v := range obj {
		out[k] = v
	}
	changed := false
	set := func(field string, v any) {
		out[field] = v
		changed = true
	}

	if _, ok := present(obj[ElementID]); !ok && defaults.IDs != nil {
		set(ElementID, defaults.IDs.Generate())
	}
	createdAt, ok := present(obj[ElementCreatedAt])
	if !ok && !defaults.CreatedAt.IsZero() {
		createdAt = defaults.CreatedAt.UTC().Format(time.RFC3339)
		set(ElementCreatedAt, createdAt)
	}
	if _, ok := present(obj[ElementUpdatedAt]); !ok && createdAt != nil {
		set(ElementUpdatedAt, createdAt)
	}
	if _, isBool := obj[ElementIsActive].(bool); !isBool {
		set(ElementIsActive, parseFlag(obj[ElementIsActive], true))
	}
	if raw, ok := present(obj[ElementDuration]); ok {
		if v, ok := ClampMin(raw, MinDurationMinutes); ok && !sameNumber(raw, v) {
			set(ElementDuration, v)
		}
	}
	if raw, ok := present(obj[ElementPrice]); ok {
		if v, ok := ClampMin(raw, MinPrice); ok && !sameNumber(raw, v) {
			set(ElementPrice, v)
		}
	}
	return out, changed
}

// parseFlag reads loosely typed booleans; anything unrecognized yields def.
func parseFlag(raw any, def bool) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch FoldEnumKey(v) {
		case "TRUE", "YES", "Y", "1", "ACTIVE", "ON":
			return true
		case "FALSE", "NO", "N", "0", "INACTIVE", "OFF":
			return false
		}
	}
	return def
}

// sameNumber reports whether raw already is the float64 v.
func sameNumber(raw any, v float64) bool {
	f, ok := raw.(float64)
	return ok && f == v
}
