package crdt

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/metrics"
)

// Snapshot is a read model of a registered counter
type Snapshot struct {
	ID        string
	Kind      Kind
	Value     int64
	State     State
	CreatedAt time.Time
}

// storedCounter pairs a counter with its registration metadata
type storedCounter struct {
	counter   Counter
	createdAt time.Time
}

// Store is an ID-keyed registry of replicated counters
//
// Concurrent Safety:
// 1. The registry map is protected by RWMutex
// 2. Read operations (Get, List, Value) use RLock for concurrent reads
// 3. Counter mutations lock the counter instance, not the registry
// 4. Snapshots carry deep copies; internal maps never escape
type Store struct {
	counters        map[string]*storedCounter
	mu              sync.RWMutex
	logger          logging.Logger
	metricsRegistry *metrics.Registry
}

// NewStore creates an empty counter registry
func NewStore() *Store {
	return NewStoreWith(logging.NewNopLogger(), nil)
}

// NewStoreWith creates an empty counter registry with explicit
// logging and metrics wiring
func NewStoreWith(logger logging.Logger, registry *metrics.Registry) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		counters:        make(map[string]*storedCounter),
		logger:          logger,
		metricsRegistry: registry,
	}
}

// Create registers a new counter of the given kind and returns its snapshot
func (s *Store) Create(kind Kind, nodeIDs []string) (Snapshot, error) {
	counter, err := New(kind, nodeIDs)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := newCounterID()
	stored := &storedCounter{
		counter:   counter,
		createdAt: time.Now(),
	}
	s.counters[id] = stored

	if s.metricsRegistry != nil {
		s.metricsRegistry.CRDTCountersTotal.Set(float64(len(s.counters)))
		s.metricsRegistry.RecordCRDTOperation(kind.String(), "create")
	}

	s.logger.Debug("counter created",
		logging.CRDTID(id),
		logging.String("kind", kind.String()),
		logging.Count(len(nodeIDs)),
	)

	return snapshotLocked(id, stored), nil
}

// Get returns a snapshot of the counter with the given ID
func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.counters[id]
	if !exists {
		return Snapshot{}, ErrNotFound
	}
	return snapshotLocked(id, stored), nil
}

// List returns snapshots of all registered counters ordered by ID
func (s *Store) List() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(s.counters))
	for id, stored := range s.counters {
		snapshots = append(snapshots, snapshotLocked(id, stored))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots
}

// Increment adds amount to the node's contribution on the identified
// counter and returns the updated value
func (s *Store) Increment(id, nodeID string, amount int64) (int64, error) {
	counter, err := s.lookup(id)
	if err != nil {
		return 0, err
	}

	if err := counter.Increment(nodeID, amount); err != nil {
		return 0, err
	}

	if s.metricsRegistry != nil {
		s.metricsRegistry.RecordCRDTOperation(counter.Kind().String(), "increment")
	}
	return counter.Value(), nil
}

// Decrement subtracts amount via the node's negative contribution on
// the identified counter and returns the updated value
func (s *Store) Decrement(id, nodeID string, amount int64) (int64, error) {
	counter, err := s.lookup(id)
	if err != nil {
		return 0, err
	}

	if err := counter.Decrement(nodeID, amount); err != nil {
		return 0, err
	}

	if s.metricsRegistry != nil {
		s.metricsRegistry.RecordCRDTOperation(counter.Kind().String(), "decrement")
	}
	return counter.Value(), nil
}

// Value returns the current value of the identified counter
func (s *Store) Value(id string) (int64, error) {
	counter, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return counter.Value(), nil
}

// Merge joins two counters of the same kind and registers the result
// as a new counter with a fresh ID. Both inputs remain registered and
// unchanged.
func (s *Store) Merge(firstID, secondID string) (Snapshot, error) {
	first, err := s.lookup(firstID)
	if err != nil {
		return Snapshot{}, err
	}
	second, err := s.lookup(secondID)
	if err != nil {
		return Snapshot{}, err
	}

	merged, err := first.Merge(second)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := newCounterID()
	stored := &storedCounter{
		counter:   merged,
		createdAt: time.Now(),
	}
	s.counters[id] = stored

	if s.metricsRegistry != nil {
		s.metricsRegistry.CRDTCountersTotal.Set(float64(len(s.counters)))
		s.metricsRegistry.CRDTMergesTotal.Inc()
	}

	s.logger.Debug("counters merged",
		logging.String("first_id", firstID),
		logging.String("second_id", secondID),
		logging.CRDTID(id),
	)

	return snapshotLocked(id, stored), nil
}

// Count returns the number of registered counters
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.counters)
}

// lookup fetches the counter instance for mutation. The counter locks
// itself, so the registry lock is released before the caller operates.
func (s *Store) lookup(id string) (Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.counters[id]
	if !exists {
		return nil, ErrNotFound
	}
	return stored.counter, nil
}

// snapshotLocked builds a snapshot for a stored counter. Callers must
// hold at least a read lock on the registry.
func snapshotLocked(id string, stored *storedCounter) Snapshot {
	state := stored.counter.State()
	return Snapshot{
		ID:        id,
		Kind:      state.Kind,
		Value:     state.Value(),
		State:     state,
		CreatedAt: stored.createdAt,
	}
}

// newCounterID generates a prefixed unique counter ID
func newCounterID() string {
	return "crdt_" + uuid.New().String()
}
