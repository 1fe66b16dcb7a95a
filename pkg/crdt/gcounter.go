package crdt

import "sync"

// GCounter is a grow-only counter. Each node accumulates its own
// increment total; the counter value is the sum over all nodes.
// Decrements are rejected.
//
// Concurrent Safety:
// 1. All public methods use a mutex for thread-safe access
// 2. State and Merge operate on deep copies, never internal maps
// 3. Merge returns a new counter; neither operand is mutated
type GCounter struct {
	counts map[string]int64
	mu     sync.Mutex
}

// NewGCounter creates a grow-only counter with the given member nodes
// initialized to zero. Nodes not listed are added lazily on first use.
func NewGCounter(nodeIDs []string) *GCounter {
	counts := make(map[string]int64, len(nodeIDs))
	for _, id := range nodeIDs {
		if id != "" {
			counts[id] = 0
		}
	}
	return &GCounter{counts: counts}
}

// newGCounterFromState restores a counter from a contribution map copy
func newGCounterFromState(counts map[string]int64) *GCounter {
	return &GCounter{counts: counts}
}

// Kind returns KindGCounter
func (c *GCounter) Kind() Kind {
	return KindGCounter
}

// Increment adds amount to the node's contribution. Unknown nodes are
// added with a zero starting contribution. Negative amounts are rejected
// and leave the counter unchanged.
func (c *GCounter) Increment(nodeID string, amount int64) error {
	if nodeID == "" {
		return ErrInvalidNodeID
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[nodeID] += amount
	return nil
}

// Decrement is not supported on a grow-only counter
func (c *GCounter) Decrement(nodeID string, amount int64) error {
	return ErrUnsupportedOperation
}

// Value returns the sum of all node contributions
func (c *GCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, v := range c.counts {
		total += v
	}
	return total
}

// State returns a deep copy of the counter's contribution map
func (c *GCounter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Kind:     KindGCounter,
		Positive: copyMap(c.counts),
	}
}

// Merge joins this counter with another grow-only counter, taking the
// per-node maximum contribution, and returns the result as a new
// counter. Merging is commutative, associative and idempotent.
func (c *GCounter) Merge(other Counter) (Counter, error) {
	if other == nil {
		return nil, ErrNilCounter
	}
	if other.Kind() != KindGCounter {
		return nil, ErrKindMismatch
	}

	otherState := other.State()
	localState := c.State()

	return newGCounterFromState(mergeMax(localState.Positive, otherState.Positive)), nil
}
