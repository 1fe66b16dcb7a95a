package crdt

import "sync"

// PNCounter is a positive-negative counter built from two grow-only
// contribution maps: one for increments, one for decrements. The
// counter value is the increment sum minus the decrement sum and may
// go negative.
//
// Concurrent Safety:
// 1. All public methods use a mutex for thread-safe access
// 2. State and Merge operate on deep copies, never internal maps
// 3. Merge returns a new counter; neither operand is mutated
type PNCounter struct {
	positive map[string]int64
	negative map[string]int64
	mu       sync.Mutex
}

// NewPNCounter creates a positive-negative counter with the given
// member nodes initialized to zero. Nodes not listed are added lazily
// on first use.
func NewPNCounter(nodeIDs []string) *PNCounter {
	positive := make(map[string]int64, len(nodeIDs))
	negative := make(map[string]int64, len(nodeIDs))
	for _, id := range nodeIDs {
		if id != "" {
			positive[id] = 0
			negative[id] = 0
		}
	}
	return &PNCounter{positive: positive, negative: negative}
}

// newPNCounterFromState restores a counter from contribution map copies
func newPNCounterFromState(positive, negative map[string]int64) *PNCounter {
	return &PNCounter{positive: positive, negative: negative}
}

// Kind returns KindPNCounter
func (c *PNCounter) Kind() Kind {
	return KindPNCounter
}

// Increment adds amount to the node's positive contribution. Unknown
// nodes are added with zero starting contributions. Negative amounts
// are rejected and leave the counter unchanged.
func (c *PNCounter) Increment(nodeID string, amount int64) error {
	if nodeID == "" {
		return ErrInvalidNodeID
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.positive[nodeID] += amount
	return nil
}

// Decrement adds amount to the node's negative contribution. Both
// contribution maps only ever grow; the subtraction happens at read
// time, which is what keeps the merge monotone.
func (c *PNCounter) Decrement(nodeID string, amount int64) error {
	if nodeID == "" {
		return ErrInvalidNodeID
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.negative[nodeID] += amount
	return nil
}

// Value returns the increment sum minus the decrement sum
func (c *PNCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, v := range c.positive {
		total += v
	}
	for _, v := range c.negative {
		total -= v
	}
	return total
}

// State returns a deep copy of both contribution maps
func (c *PNCounter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Kind:     KindPNCounter,
		Positive: copyMap(c.positive),
		Negative: copyMap(c.negative),
	}
}

// Merge joins this counter with another positive-negative counter,
// taking the per-node maximum of each contribution map independently,
// and returns the result as a new counter.
func (c *PNCounter) Merge(other Counter) (Counter, error) {
	if other == nil {
		return nil, ErrNilCounter
	}
	if other.Kind() != KindPNCounter {
		return nil, ErrKindMismatch
	}

	otherState := other.State()
	localState := c.State()

	return newPNCounterFromState(
		mergeMax(localState.Positive, otherState.Positive),
		mergeMax(localState.Negative, otherState.Negative),
	), nil
}
