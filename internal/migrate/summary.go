package migrate

import (
	"fmt"

	"github.com/roach88/docmigrate/internal/doc"
)

// Summary is the report of one run. It is built up while records stream
// through and emitted once at the end; it is never persisted.
type Summary struct {
	Collection string `json:"collection"`
	DryRun     bool   `json:"dryRun"`

	Processed int `json:"processed"` // records read from the cursor
	Modified  int `json:"modified"`  // records the store reported as changed
	Errors    int `json:"errors"`    // records whose transform failed

	Planned int `json:"planned"` // non-empty patches pushed
	Batches int `json:"batches"` // batches flushed or discarded
	Failed  int `json:"failed"`  // operations the store rejected

	BatchErrors int `json:"batchErrors"` // bulk writes that failed as a whole

	Collisions     []doc.Collision `json:"collisions"`
	IndexesCreated []string        `json:"indexesCreated"`

	// State is the last state entered; Done unless the run failed.
	State State `json:"state"`
}

func newSummary(collection string, dryRun bool) *Summary {
	return &Summary{
		Collection:     collection,
		DryRun:         dryRun,
		Collisions:     []doc.Collision{},
		IndexesCreated: []string{},
	}
}

// String renders the final counters line.
func (s *Summary) String() string {
	mode := "write"
	if s.DryRun {
		mode = "dry-run"
	}
	return fmt.Sprintf("collection=%s mode=%s processed=%d modified=%d errors=%d planned=%d batches=%d failed=%d batchErrors=%d collisions=%d indexes=%d",
		s.Collection, mode, s.Processed, s.Modified, s.Errors, s.Planned, s.Batches, s.Failed, s.BatchErrors,
		len(s.Collisions), len(s.IndexesCreated))
}
