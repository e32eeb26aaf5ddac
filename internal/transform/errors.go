package transform

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned for records without an id.
var ErrMissingID = errors.New("record has no id")

// RecordError is a whole-record transform failure. The run counts it and
// moves on to the next record.
type RecordError struct {
	RecordID string
	Field    string // field whose normalizer failed, if any
	Err      error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record %s: field %s: %v", e.RecordID, e.Field, e.Err)
	}
	return fmt.Sprintf("record %s: %v", e.RecordID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsRecordError returns true if err is, or wraps, a RecordError.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}
