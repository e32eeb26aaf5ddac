package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CollapseSpace trims s and replaces every internal whitespace run with a
// single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanString returns the NFC, whitespace-collapsed form of a string value.
func cleanString(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = CollapseSpace(norm.NFC.String(s))
	if s == "" {
		return "", false
	}
	return s, true
}

// Title canonicalizes free text such as names and city names:
// "  colombo   fort " becomes "Colombo Fort".
func Title(raw any) (string, bool) {
	s, ok := cleanString(raw)
	if !ok {
		return "", false
	}
	// Casers are stateful; one per call.
	return cases.Title(language.English).String(s), true
}

// Lower trims, collapses whitespace and lower-cases a string value.
func Lower(raw any) (string, bool) {
	s, ok := cleanString(raw)
	if !ok {
		return "", false
	}
	return cases.Lower(language.Und).String(s), true
}

// Email returns the lower-case address. Values without exactly one "@"
// separating a non-empty local part and domain, or containing spaces,
// are absent.
func Email(raw any) (string, bool) {
	s, ok := Lower(raw)
	if !ok || strings.ContainsRune(s, ' ') {
		return "", false
	}
	local, domain, found := strings.Cut(s, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", false
	}
	return s, true
}
