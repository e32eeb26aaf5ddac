package normalize

import (
	"strconv"
	"strings"
)

// Number reads a numeric value. Numeric strings are accepted.
func Number(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ClampMin returns the numeric value of raw raised to at least min.
// Values below the domain minimum are clamped, not rejected.
func ClampMin(raw any, min float64) (float64, bool) {
	f, ok := Number(raw)
	if !ok {
		return 0, false
	}
	if f < min {
		return min, true
	}
	return f, true
}
