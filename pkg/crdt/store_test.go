package crdt

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// TestStoreCreate tests registering counters of both kinds
func TestStoreCreate(t *testing.T) {
	store := NewStore()

	snap, err := store.Create(KindGCounter, []string{"node-1", "node-2"})
	if err != nil {
		t.Fatalf("Failed to create counter: %v", err)
	}

	if !strings.HasPrefix(snap.ID, "crdt_") {
		t.Errorf("Expected crdt_ ID prefix, got %s", snap.ID)
	}
	if snap.Kind != KindGCounter {
		t.Errorf("Expected kind gcounter, got %v", snap.Kind)
	}
	if snap.Value != 0 {
		t.Errorf("Expected initial value 0, got %d", snap.Value)
	}

	if _, err := store.Create(KindPNCounter, []string{"node-1"}); err != nil {
		t.Fatalf("Failed to create pncounter: %v", err)
	}

	if store.Count() != 2 {
		t.Errorf("Expected 2 registered counters, got %d", store.Count())
	}
}

// TestStoreGet tests lookup by ID
func TestStoreGet(t *testing.T) {
	store := NewStore()

	created, _ := store.Create(KindGCounter, []string{"node-1"})
	store.Increment(created.ID, "node-1", 12)

	snap, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if snap.Value != 12 {
		t.Errorf("Expected value 12, got %d", snap.Value)
	}

	_, err = store.Get("crdt_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestStoreIncrementDecrement tests mutation through the registry
func TestStoreIncrementDecrement(t *testing.T) {
	store := NewStore()
	snap, _ := store.Create(KindPNCounter, []string{"node-1"})

	value, err := store.Increment(snap.ID, "node-1", 10)
	if err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}
	if value != 10 {
		t.Errorf("Expected value 10, got %d", value)
	}

	value, err = store.Decrement(snap.ID, "node-1", 4)
	if err != nil {
		t.Fatalf("Failed to decrement: %v", err)
	}
	if value != 6 {
		t.Errorf("Expected value 6, got %d", value)
	}

	if _, err := store.Increment("crdt_missing", "node-1", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown counter, got %v", err)
	}
}

// TestStoreDecrementGCounter tests error propagation for unsupported operations
func TestStoreDecrementGCounter(t *testing.T) {
	store := NewStore()
	snap, _ := store.Create(KindGCounter, []string{"node-1"})

	_, err := store.Decrement(snap.ID, "node-1", 1)
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Expected ErrUnsupportedOperation, got %v", err)
	}
}

// TestStoreMerge tests that merging registers a new counter and
// leaves the inputs untouched
func TestStoreMerge(t *testing.T) {
	store := NewStore()

	first, _ := store.Create(KindGCounter, []string{"node-a", "node-b"})
	store.Increment(first.ID, "node-a", 10)
	store.Increment(first.ID, "node-b", 5)

	second, _ := store.Create(KindGCounter, []string{"node-a", "node-b"})
	store.Increment(second.ID, "node-a", 7)
	store.Increment(second.ID, "node-b", 8)

	merged, err := store.Merge(first.ID, second.ID)
	if err != nil {
		t.Fatalf("Failed to merge: %v", err)
	}

	if merged.ID == first.ID || merged.ID == second.ID {
		t.Error("Merged counter must have a fresh ID")
	}
	if merged.Value != 18 {
		t.Errorf("Expected merged value 18, got %d", merged.Value)
	}

	// Original counters still registered with their own values
	firstSnap, _ := store.Get(first.ID)
	if firstSnap.Value != 15 {
		t.Errorf("First counter changed by merge: expected 15, got %d", firstSnap.Value)
	}
	if store.Count() != 3 {
		t.Errorf("Expected 3 counters after merge, got %d", store.Count())
	}
}

// TestStoreMergeKindMismatch tests that cross-kind merges are rejected
// without registering anything
func TestStoreMergeKindMismatch(t *testing.T) {
	store := NewStore()

	gc, _ := store.Create(KindGCounter, []string{"node-a"})
	pn, _ := store.Create(KindPNCounter, []string{"node-a"})

	_, err := store.Merge(gc.ID, pn.ID)
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Expected ErrKindMismatch, got %v", err)
	}

	if store.Count() != 2 {
		t.Errorf("Failed merge must not register a counter: got %d", store.Count())
	}
}

// TestStoreMergeMissingCounter tests lookup failures on merge
func TestStoreMergeMissingCounter(t *testing.T) {
	store := NewStore()
	snap, _ := store.Create(KindGCounter, []string{"node-a"})

	if _, err := store.Merge(snap.ID, "crdt_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.Merge("crdt_missing", snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestStoreList tests deterministic listing
func TestStoreList(t *testing.T) {
	store := NewStore()

	store.Create(KindGCounter, []string{"node-1"})
	store.Create(KindPNCounter, []string{"node-1"})
	store.Create(KindGCounter, nil)

	snapshots := store.List()
	if len(snapshots) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
	}

	for i := 1; i < len(snapshots); i++ {
		if snapshots[i-1].ID >= snapshots[i].ID {
			t.Error("Expected snapshots ordered by ID")
		}
	}
}

// TestStoreConcurrentAccess tests parallel creates and mutations
func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	snap, _ := store.Create(KindGCounter, []string{"node-1"})

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Increment(snap.ID, "node-1", 1)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Create(KindPNCounter, nil)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Get(snap.ID)
			store.List()
		}()
	}
	wg.Wait()

	value, err := store.Value(snap.ID)
	if err != nil {
		t.Fatalf("Failed to read value: %v", err)
	}
	if value != 30 {
		t.Errorf("Expected value 30 after concurrent increments, got %d", value)
	}
	if store.Count() != 31 {
		t.Errorf("Expected 31 counters, got %d", store.Count())
	}
}
