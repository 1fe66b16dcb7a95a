package health

import "time"

// Common health check functions

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// EngineCheck creates a health check for the consensus engine
func EngineCheck(getCounts func() (nodes, clusters int)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "engine",
			Details: make(map[string]any),
		}

		nodes, clusters := getCounts()

		check.Details["registered_nodes"] = nodes
		check.Details["clusters"] = clusters

		check.Status = StatusHealthy
		check.Message = "Engine responding"

		return check
	}
}

// QuorumCheck creates a health check for cluster quorum status
func QuorumCheck(getQuorumState func() (clusters, quorate int)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "quorum",
			Details: make(map[string]any),
		}

		clusters, quorate := getQuorumState()

		check.Details["clusters"] = clusters
		check.Details["quorate"] = quorate

		if clusters == 0 {
			// No clusters declared yet
			check.Status = StatusHealthy
			check.Message = "No clusters declared"
		} else if quorate == 0 {
			check.Status = StatusUnhealthy
			check.Message = "No cluster has quorum"
		} else if quorate < clusters {
			check.Status = StatusDegraded
			check.Message = "Some clusters below quorum"
		} else {
			check.Status = StatusHealthy
			check.Message = "All clusters have quorum"
		}

		return check
	}
}

// SplitBrainCheck creates a health check that surfaces detected
// split-brain conditions
func SplitBrainCheck(probe func() (checked, detected int)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "split_brain",
			Details: make(map[string]any),
		}

		checked, detected := probe()

		check.Details["clusters_checked"] = checked
		check.Details["detected"] = detected

		if detected > 0 {
			check.Status = StatusUnhealthy
			check.Message = "Split-brain detected"
		} else {
			check.Status = StatusHealthy
			check.Message = "No split-brain detected"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		// Consider degraded if allocated memory > 80% of system memory
		usagePercent := float64(alloc) / float64(sys) * 100

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
