package migrate

// State is a stage of a migration run.
type State int

const (
	StateInit State = iota
	StatePrechecking
	StateStreaming
	StateFlushing
	StateIndexing
	StateDone
)

var stateNames = [...]string{
	StateInit:        "init",
	StatePrechecking: "prechecking",
	StateStreaming:   "streaming",
	StateFlushing:    "flushing",
	StateIndexing:    "indexing",
	StateDone:        "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON summaries.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
