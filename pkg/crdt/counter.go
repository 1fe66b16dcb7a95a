package crdt

// Kind identifies the counter family a CRDT instance belongs to
type Kind int

const (
	// KindGCounter is a grow-only counter (increments only)
	KindGCounter Kind = iota
	// KindPNCounter is a positive-negative counter (increments and decrements)
	KindPNCounter
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindGCounter:
		return "gcounter"
	case KindPNCounter:
		return "pncounter"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "gcounter", "g-counter", "GCOUNTER":
		return KindGCounter, nil
	case "pncounter", "pn-counter", "PNCOUNTER":
		return KindPNCounter, nil
	default:
		return KindGCounter, ErrUnknownKind
	}
}

// State is a point-in-time snapshot of a counter's internal state.
// Positive holds per-node increment totals. Negative holds per-node
// decrement totals and is nil for grow-only counters.
type State struct {
	Kind     Kind
	Positive map[string]int64
	Negative map[string]int64
}

// Value computes the counter value represented by the state
func (s State) Value() int64 {
	var total int64
	for _, v := range s.Positive {
		total += v
	}
	for _, v := range s.Negative {
		total -= v
	}
	return total
}

// Counter is a state-based replicated counter.
//
// Implementations converge under merge: merging is commutative,
// associative and idempotent, and never loses a recorded contribution.
// All operations are safe for concurrent use.
type Counter interface {
	// Kind returns the counter family
	Kind() Kind
	// Increment adds amount to the node's contribution
	Increment(nodeID string, amount int64) error
	// Decrement subtracts amount via the node's negative contribution
	Decrement(nodeID string, amount int64) error
	// Value returns the current counter value
	Value() int64
	// Merge joins this counter with another of the same kind and
	// returns a new counter; neither input is modified
	Merge(other Counter) (Counter, error)
	// State returns a deep copy of the counter's internal state
	State() State
}

// New creates an empty counter of the given kind with the listed
// member nodes initialized to zero contributions.
func New(kind Kind, nodeIDs []string) (Counter, error) {
	switch kind {
	case KindGCounter:
		return NewGCounter(nodeIDs), nil
	case KindPNCounter:
		return NewPNCounter(nodeIDs), nil
	default:
		return nil, ErrUnknownKind
	}
}

// mergeMax folds b into a copy of a taking the per-node maximum
func mergeMax(a, b map[string]int64) map[string]int64 {
	merged := make(map[string]int64, len(a)+len(b))
	for node, v := range a {
		merged[node] = v
	}
	for node, v := range b {
		if existing, ok := merged[node]; !ok || v > existing {
			merged[node] = v
		}
	}
	return merged
}

// copyMap returns a defensive copy of a contribution map
func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
