package crdt

import "errors"

// Lookup errors
var (
	ErrNotFound    = errors.New("counter not found")
	ErrUnknownKind = errors.New("unknown counter kind")
)

// Operation errors
var (
	ErrUnsupportedOperation = errors.New("operation not supported by counter kind")
	ErrInvalidAmount        = errors.New("amount must be non-negative")
	ErrInvalidNodeID        = errors.New("node ID cannot be empty")
	ErrKindMismatch         = errors.New("cannot merge counters of different kinds")
	ErrNilCounter           = errors.New("counter cannot be nil")
)
