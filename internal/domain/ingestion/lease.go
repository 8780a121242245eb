package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SyncLease enforces at most one active sync per tenant. Acquire returns
// false when another sync holds the lease for the same tenant; Release must
// be called on every exit path so a tenant can never stay wedged. The TTL
// guards against process crashes for store-backed implementations.
type SyncLease interface {
	Acquire(ctx context.Context, tenantID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, tenantID uuid.UUID) error
}
