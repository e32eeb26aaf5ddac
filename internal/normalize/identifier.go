package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

var typePrefixes = map[string]string{
	TypeIndividual: "IND",
	TypeSalon:      "SLN",
	TypeClinic:     "CLN",
	TypeSpa:        "SPA",
	TypeFitness:    "FIT",
	TypeOther:      "PRV",
}

// IdentifierPrefix returns the code prefix for a canonical provider type.
func IdentifierPrefix(providerType string) string {
	if p, ok := typePrefixes[providerType]; ok {
		return p
	}
	return typePrefixes[TypeOther]
}

// Identifier builds a provider code "<PREFIX>-<TS6>-<ID4>" from the type
// prefix, the last six base-36 digits of the creation time in milliseconds
// and the last four alphanumerics of the record id.
//
// Uniqueness is best effort; the code precheck reports what it misses.
func Identifier(providerType string, created time.Time, recordID string) (string, bool) {
	var tail []rune
	for _, r := range recordID {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			tail = append(tail, unicode.ToUpper(r))
		}
	}
	if len(tail) == 0 || created.IsZero() {
		return "", false
	}
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	id4 := strings.Repeat("0", 4-len(tail)) + string(tail)

	ts := strings.ToUpper(strconv.FormatInt(created.UnixMilli(), 36))
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	ts = strings.Repeat("0", 6-len(ts)) + ts

	return IdentifierPrefix(providerType) + "-" + ts + "-" + id4, true
}

// Code canonicalizes an existing identifier: trimmed, upper case, without
// internal whitespace.
func Code(raw any) (string, bool) {
	s, ok := cleanString(raw)
	if !ok {
		return "", false
	}
	return strings.ToUpper(strings.ReplaceAll(s, " ", "")), true
}

// Timestamp parses an RFC 3339 timestamp value.
func Timestamp(raw any) (time.Time, bool) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
