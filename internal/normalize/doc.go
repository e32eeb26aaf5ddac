// Package normalize holds the field normalizers of a migration run.
//
// Every normalizer is a pure function from a raw document value to its
// canonical form. A normalizer that cannot canonicalize its input returns
// ok=false ("absent"); callers then leave the field untouched instead of
// inventing data. Nulls and blank strings are always absent, never "".
//
// Normalizers are idempotent: feeding a canonical value back in returns
// the same value. The transformer relies on this to produce empty patches
// on re-runs.
package normalize
