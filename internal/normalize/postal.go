package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	postalFive = regexp.MustCompile(`^[0-9]{5}$`)
	postalFour = regexp.MustCompile(`^[0-9]{4}$`)
)

// PostalCode accepts 5-digit codes as-is and repairs legacy 4-digit codes
// by left-padding a zero: "1234" -> "01234". Everything else is absent.
func PostalCode(raw any) (string, bool) {
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		if v != math.Trunc(v) || v < 0 {
			return "", false
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "", false
	}
	switch {
	case postalFive.MatchString(s):
		return s, true
	case postalFour.MatchString(s):
		return "0" + s, true
	}
	return "", false
}
