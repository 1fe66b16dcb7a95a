package cluster

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
)

// AppendEntry appends a checksummed entry to a cluster's replicated
// log. The cluster must have an elected leader; the entry is stamped
// with the leader's current term and the next 0-based index, which is
// never reused.
//
// Replication is modeled through cursors rather than messages: every
// registered, online member's applied position advances to the new
// log length, while offline members keep their position and fall
// behind. Diagnostics read the lag from those cursors.
func (e *Engine) AppendEntry(clusterID string, data []byte) (*LogEntry, error) {
	lock := e.clusterLock(clusterID)
	lock.Lock()
	defer lock.Unlock()

	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}
	if !info.HasLeader() {
		return nil, ErrNoLeader
	}

	online := e.nodes.OnlineMembers(info.Nodes)

	e.mu.Lock()
	log := e.logs[clusterID]
	entry := LogEntry{
		Index:      uint64(len(log)),
		Term:       info.CurrentTerm,
		Data:       append([]byte(nil), data...),
		Checksum:   entryChecksum(data),
		AppendedAt: time.Now(),
	}
	e.logs[clusterID] = append(log, entry)
	newLength := uint64(len(log) + 1)

	cursors := e.applied[clusterID]
	if cursors == nil {
		cursors = make(map[string]uint64, len(info.Nodes))
		e.applied[clusterID] = cursors
	}
	for _, node := range online {
		cursors[node.ID] = newLength
	}
	e.mu.Unlock()

	if e.metricsRegistry != nil {
		e.metricsRegistry.LogAppendsTotal.Inc()
		e.metricsRegistry.ClusterLogLength.WithLabelValues(clusterID).Set(float64(newLength))
	}
	e.logger.Debug("log entry appended",
		logging.ClusterID(clusterID),
		logging.Int("index", int(entry.Index)),
		logging.Term(entry.Term))

	entryCopy := cloneEntry(&entry)
	return &entryCopy, nil
}

// Log returns a copy of a cluster's replicated log in append order
func (e *Engine) Log(clusterID string) ([]LogEntry, error) {
	if _, err := e.clusters.Get(clusterID); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	log := e.logs[clusterID]
	entries := make([]LogEntry, 0, len(log))
	for i := range log {
		entries = append(entries, cloneEntry(&log[i]))
	}

	return entries, nil
}

// entryChecksum returns the hex BLAKE2b-256 digest of an entry payload
func entryChecksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cloneEntry returns a deep copy of a log entry
func cloneEntry(entry *LogEntry) LogEntry {
	entryCopy := *entry
	entryCopy.Data = append([]byte(nil), entry.Data...)
	return entryCopy
}
