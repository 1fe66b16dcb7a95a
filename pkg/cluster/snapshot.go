package cluster

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/golang/snappy"
)

const (
	snapshotMagic      uint32 = 0x434E5350 // "CNSP"
	snapshotVersion    uint16 = 1
	snapshotHeaderSize        = 4 + 2 + 4  // magic + version + payload length
)

// Snapshot is a point-in-time read model of one cluster: its
// declaration, the registered members' state, the replicated log and
// the per-member applied cursors. It is a state-transfer format, not
// persistence; the engine never reloads from it.
type Snapshot struct {
	FormatVersion int               `json:"format_version"`
	Cluster       ClusterInfo       `json:"cluster"`
	Nodes         []NodeInfo        `json:"nodes"`
	Log           []LogEntry        `json:"log"`
	Applied       map[string]uint64 `json:"applied"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ExportSnapshot serializes a cluster's full state into a framed,
// compressed record. The JSON payload is snappy-compressed and framed
// with a CRC32 checksum over the compressed bytes, so a receiver can
// verify integrity before decoding.
//
// Format: [Magic:4][Version:2][PayloadLen:4][Payload:N][Checksum:4]
func (e *Engine) ExportSnapshot(clusterID string) ([]byte, error) {
	lock := e.clusterLock(clusterID)
	lock.Lock()
	defer lock.Unlock()

	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}

	members := e.nodes.Members(info.Nodes)

	e.mu.RLock()
	log := e.logs[clusterID]
	entries := make([]LogEntry, 0, len(log))
	for i := range log {
		entries = append(entries, cloneEntry(&log[i]))
	}
	cursors := make(map[string]uint64, len(e.applied[clusterID]))
	for nodeID, applied := range e.applied[clusterID] {
		cursors[nodeID] = applied
	}
	e.mu.RUnlock()

	snapshot := Snapshot{
		FormatVersion: int(snapshotVersion),
		Cluster:       *info,
		Nodes:         members,
		Log:           entries,
		Applied:       cursors,
		CreatedAt:     time.Now(),
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	compressed := snappy.Encode(nil, payload)
	checksum := crc32.ChecksumIEEE(compressed)

	framed := make([]byte, 0, snapshotHeaderSize+len(compressed)+4)
	framed = binary.BigEndian.AppendUint32(framed, snapshotMagic)
	framed = binary.BigEndian.AppendUint16(framed, snapshotVersion)
	framed = binary.BigEndian.AppendUint32(framed, uint32(len(compressed)))
	framed = append(framed, compressed...)
	framed = binary.BigEndian.AppendUint32(framed, checksum)

	return framed, nil
}

// DecodeSnapshot verifies a framed snapshot and decodes its payload
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < snapshotHeaderSize+4 {
		return nil, ErrSnapshotTooShort
	}

	if binary.BigEndian.Uint32(data[0:4]) != snapshotMagic {
		return nil, ErrSnapshotBadMagic
	}
	if binary.BigEndian.Uint16(data[4:6]) != snapshotVersion {
		return nil, ErrSnapshotVersion
	}

	payloadLen := int(binary.BigEndian.Uint32(data[6:10]))
	if len(data) != snapshotHeaderSize+payloadLen+4 {
		return nil, ErrSnapshotTruncated
	}

	compressed := data[snapshotHeaderSize : snapshotHeaderSize+payloadLen]
	checksum := binary.BigEndian.Uint32(data[snapshotHeaderSize+payloadLen:])

	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, ErrSnapshotChecksum
	}

	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}

	return &snapshot, nil
}
