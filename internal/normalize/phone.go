package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CountryCode is the international dialling code accepted by Phone.
const CountryCode = "94"

// nationalPhone is the canonical mobile form: trunk 0, operator prefix 7x
// with x restricted to allocated mobile ranges, then 7 subscriber digits.
var nationalPhone = regexp.MustCompile(`^07[0124-8][0-9]{7}$`)

// Phone canonicalizes phone numbers to the national form.
//
//	"+94 77 123 4567" -> "0771234567"
//	"077-123-4567"    -> "0771234567"
//
// Anything that is not a national (0 + 9 digits) or international
// (+94 + 9 digits) mobile number is absent.
func Phone(raw any) (string, bool) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		// Numbers lose the trunk zero and the plus sign.
		if v != math.Trunc(v) || v <= 0 {
			return "", false
		}
		digits := strconv.FormatFloat(v, 'f', -1, 64)
		switch {
		case len(digits) == 9:
			s = "0" + digits
		case len(digits) == 11 && strings.HasPrefix(digits, CountryCode):
			s = "+" + digits
		default:
			return "", false
		}
	default:
		return "", false
	}

	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, s)

	switch {
	case strings.HasPrefix(s, "+"+CountryCode):
		s = "0" + strings.TrimPrefix(s, "+"+CountryCode)
	case strings.Contains(s, "+"):
		return "", false
	}
	if !nationalPhone.MatchString(s) {
		return "", false
	}
	return s, true
}
