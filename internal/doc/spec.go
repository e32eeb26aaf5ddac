package doc

// Update is one partial update addressed to a record id.
type Update struct {
	ID    string
	Patch *Patch
}

// BulkResult is what a store reports after an unordered bulk update.
type BulkResult struct {
	Modified int // records whose stored document actually changed
	Failed   int // operations the store rejected
}

// Add folds another result into r.
func (r *BulkResult) Add(other BulkResult) {
	r.Modified += other.Modified
	r.Failed += other.Failed
}

// Collision is a group of records sharing one canonicalized key value.
type Collision struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

// IndexSpec describes a single-field index. Field may use dots for nested
// fields (address.city).
type IndexSpec struct {
	Name   string
	Field  string
	Unique bool
}
