package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var enumSeparators = regexp.MustCompile(`[\s\-./]+`)

// Enum canonicalizes free-text values into a closed set.
type Enum struct {
	name     string
	members  map[string]string // folded key -> canonical value
	synonyms map[string]string // folded key -> folded member key
	suffixes []string
}

// EnumOption configures an Enum.
type EnumOption func(*Enum)

// WithSynonyms maps alternative spellings onto member keys.
func WithSynonyms(synonyms map[string]string) EnumOption {
	return func(e *Enum) {
		for from, to := range synonyms {
			e.synonyms[FoldEnumKey(from)] = FoldEnumKey(to)
		}
	}
}

// WithStrippedSuffix removes a trailing decoration ("_PROVINCE") before lookup.
func WithStrippedSuffix(suffix string) EnumOption {
	return func(e *Enum) {
		e.suffixes = append(e.suffixes, "_"+FoldEnumKey(suffix))
	}
}

// NewEnum builds an Enum whose members are given as folded key -> canonical
// value. For enums stored in their key form the value equals the key.
func NewEnum(name string, members map[string]string, opts ...EnumOption) *Enum {
	e := &Enum{
		name:     name,
		members:  make(map[string]string, len(members)),
		synonyms: map[string]string{},
	}
	for key, value := range members {
		e.members[FoldEnumKey(key)] = value
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name identifies the enum in logs.
func (e *Enum) Name() string { return e.name }

// Normalize returns the canonical member for raw, or ok=false when raw
// matches no member. It never substitutes a default.
func (e *Enum) Normalize(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	key := FoldEnumKey(s)
	if key == "" {
		return "", false
	}
	if v, ok := e.lookup(key); ok {
		return v, true
	}
	for _, suffix := range e.suffixes {
		if trimmed := strings.TrimSuffix(key, suffix); trimmed != key {
			if v, ok := e.lookup(trimmed); ok {
				return v, true
			}
		}
	}
	return "", false
}

// Contains reports whether v is a canonical member value.
func (e *Enum) Contains(v string) bool {
	for _, member := range e.members {
		if member == v {
			return true
		}
	}
	return false
}

func (e *Enum) lookup(key string) (string, bool) {
	if v, ok := e.members[key]; ok {
		return v, true
	}
	if target, ok := e.synonyms[key]; ok {
		v, ok := e.members[target]
		return v, ok
	}
	return "", false
}

// FoldEnumKey upper-cases s and joins its words with underscores:
// " north-western province" becomes "NORTH_WESTERN_PROVINCE".
func FoldEnumKey(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	s = enumSeparators.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.ToUpper(s)
}

// Provider statuses.
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusPending   = "PENDING"
	StatusSuspended = "SUSPENDED"
)

// Provider types.
const (
	TypeIndividual = "INDIVIDUAL"
	TypeSalon      = "SALON"
	TypeClinic     = "CLINIC"
	TypeSpa        = "SPA"
	TypeFitness    = "FITNESS"
	TypeOther      = "OTHER"
)

// Status is the closed set of provider statuses.
var Status = NewEnum("status", map[string]string{
	StatusActive:    StatusActive,
	StatusInactive:  StatusInactive,
	StatusPending:   StatusPending,
	StatusSuspended: StatusSuspended,
}, WithSynonyms(map[string]string{
	"ENABLED":           StatusActive,
	"LIVE":              StatusActive,
	"APPROVED":          StatusActive,
	"DISABLED":          StatusInactive,
	"PENDING_APPROVAL":  StatusPending,
	"AWAITING_APPROVAL": StatusPending,
	"NEW":               StatusPending,
	"BANNED":            StatusSuspended,
	"BLOCKED":           StatusSuspended,
}))

// ProviderType is the closed set of provider categories.
var ProviderType = NewEnum("type", map[string]string{
	TypeIndividual: TypeIndividual,
	TypeSalon:      TypeSalon,
	TypeClinic:     TypeClinic,
	TypeSpa:        TypeSpa,
	TypeFitness:    TypeFitness,
	TypeOther:      TypeOther,
}, WithSynonyms(map[string]string{
	"BEAUTY_SALON": TypeSalon,
	"BARBER":       TypeSalon,
	"SALOON":       TypeSalon,
	"MEDICAL":      TypeClinic,
	"CLINICIAN":    TypeClinic,
	"GYM":          TypeFitness,
	"TRAINER":      TypeFitness,
	"FREELANCER":   TypeIndividual,
	"PERSONAL":     TypeIndividual,
	"WELLNESS":     TypeSpa,
}))

// Province is the closed set of provinces, stored in display form.
var Province = NewEnum("province", map[string]string{
	"WESTERN":       "Western",
	"CENTRAL":       "Central",
	"SOUTHERN":      "Southern",
	"NORTHERN":      "Northern",
	"EASTERN":       "Eastern",
	"NORTH_WESTERN": "North Western",
	"NORTH_CENTRAL": "North Central",
	"UVA":           "Uva",
	"SABARAGAMUWA":  "Sabaragamuwa",
}, WithSynonyms(map[string]string{
	"NW":           "NORTH_WESTERN",
	"NORTHWESTERN": "NORTH_WESTERN",
	"NC":           "NORTH_CENTRAL",
	"NORTHCENTRAL": "NORTH_CENTRAL",
	"WP":           "WESTERN",
}), WithStrippedSuffix("province"))
