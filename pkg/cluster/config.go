package cluster

import (
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/metrics"
)

// EngineConfig defines configuration for a consensus engine instance
type EngineConfig struct {
	// Observability
	Logger  logging.Logger    // Structured logger (nil uses a no-op logger)
	Metrics *metrics.Registry // Metrics registry (nil disables metrics)

	// Election behavior
	WinnerPolicy WinnerPolicy // Winner selection among candidates (nil uses LongestLogPolicy)

	// Defaults applied to clusters created without explicit timings.
	// These drive higher-level periodic re-election triggers only;
	// nothing inside the engine blocks or cancels on them.
	DefaultElectionTimeout   time.Duration // Default: 5s
	DefaultHeartbeatInterval time.Duration // Default: 1s
}

// DefaultEngineConfig returns a safe default configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultElectionTimeout:   5 * time.Second,
		DefaultHeartbeatInterval: 1 * time.Second,
	}
}

// Validate checks if configuration is valid
func (c *EngineConfig) Validate() error {
	if c.DefaultHeartbeatInterval <= 0 {
		return ErrInvalidHeartbeat
	}
	if c.DefaultElectionTimeout < c.DefaultHeartbeatInterval {
		return ErrElectionTimeoutTooSmall
	}
	return nil
}
