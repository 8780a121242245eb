package ingestion

import (
	"time"

	"github.com/google/uuid"
)

// SyncState is the orchestrator state for one invocation
type SyncState string

const (
	SyncStateIdle           SyncState = "IDLE"
	SyncStateConnectionTest SyncState = "CONNECTION_TEST"
	SyncStateSyncing        SyncState = "SYNCING"
	SyncStateFailed         SyncState = "FAILED"
	SyncStateDone           SyncState = "DONE"
)

// KindResult is the outcome of one reconciler run. Observed counts records
// seen on the shop side; Failed counts records skipped after a mapping or
// write failure. A reconciler run "succeeds" when it was attempted, even
// with per-record failures.
type KindResult struct {
	Kind     EntityKind `json:"kind"`
	Observed int        `json:"observed"`
	Failed   int        `json:"failed"`
	Error    string     `json:"error,omitempty"`
}

// SyncReport is the per-tenant aggregate outcome: the unit returned to the
// manual trigger path and logged by the fleet loop.
type SyncReport struct {
	TenantID    uuid.UUID    `json:"tenant_id"`
	State       SyncState    `json:"state"`
	Results     []KindResult `json:"results,omitempty"`
	Error       string       `json:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
}

// Succeeded reports whether the sync reached Done
func (r *SyncReport) Succeeded() bool {
	return r.State == SyncStateDone
}

// TotalObserved sums observed records across all kinds
func (r *SyncReport) TotalObserved() int {
	total := 0
	for _, res := range r.Results {
		total += res.Observed
	}
	return total
}
