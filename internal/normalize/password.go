package normalize

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password hash cost bounds accepted by bcrypt.
const (
	MinHashCost     = bcrypt.MinCost
	MaxHashCost     = bcrypt.MaxCost
	DefaultHashCost = bcrypt.DefaultCost
)

// IsPasswordHash reports whether s already is a bcrypt hash.
func IsPasswordHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Password returns a bcrypt hash of a plain-text password. Existing hashes
// are returned unchanged, whatever their cost, so re-runs never re-hash.
// An error means the value is a password but cannot be hashed (for example
// longer than 72 bytes); the whole record is then failed.
func Password(raw any, cost int) (string, bool, error) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false, nil
	}
	if IsPasswordHash(s) {
		return s, true, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s), cost)
	if err != nil {
		return "", false, fmt.Errorf("hash password: %w", err)
	}
	return string(hash), true, nil
}
