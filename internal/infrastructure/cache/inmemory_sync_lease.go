package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemorySyncLease enforces per-tenant sync mutual exclusion within a
// single process. Expired leases are reclaimed on the next Acquire so a
// crashed sync cannot wedge its tenant forever.
// WARNING: state is not shared across process instances; distributed
// deployments must use the Redis lease.
type InMemorySyncLease struct {
	mu     sync.Mutex
	leases map[uuid.UUID]time.Time
}

// NewInMemorySyncLease creates an in-memory sync lease
func NewInMemorySyncLease() *InMemorySyncLease {
	return &InMemorySyncLease{
		leases: make(map[uuid.UUID]time.Time),
	}
}

// Acquire takes the lease for a tenant, returning false if it is held
func (l *InMemorySyncLease) Acquire(_ context.Context, tenantID uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.leases[tenantID]; held && time.Now().Before(expiry) {
		return false, nil
	}
	l.leases[tenantID] = time.Now().Add(ttl)
	return true, nil
}

// Release frees the lease for a tenant
func (l *InMemorySyncLease) Release(_ context.Context, tenantID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, tenantID)
	return nil
}
