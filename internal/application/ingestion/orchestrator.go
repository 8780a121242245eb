package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
)

// reconcileOrder is the fixed reconciler sequence. Orders go last so the
// customer rows they reference are usually present already, though nothing
// hard-depends on that.
// Orchestrator drives one tenant's sync: Idle -> ConnectionTest ->
// {Failed | Syncing} -> Done. It enforces at most one active sync per
// tenant via the lease, which is released on every exit path. The returned
// SyncReport is the unit handed to the manual trigger and logged by the
// fleet loop.
type Orchestrator struct {
	tenants     identity.TenantRepository
	gateway     ingestion.StorefrontGateway
	lease       ingestion.SyncLease
	leaseTTL    time.Duration
	reconcilers []Reconciler
	logger      *zap.Logger

	// last report per tenant, for the status endpoint
	reportsMu sync.RWMutex
	reports   map[uuid.UUID]*ingestion.SyncReport
}

// NewOrchestrator creates a tenant sync orchestrator. Reconcilers run in
// the order given; the canonical sequence is customers, products, orders.
func NewOrchestrator(
	tenants identity.TenantRepository,
	gateway ingestion.StorefrontGateway,
	lease ingestion.SyncLease,
	leaseTTL time.Duration,
	reconcilers []Reconciler,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		tenants:     tenants,
		gateway:     gateway,
		lease:       lease,
		leaseTTL:    leaseTTL,
		reconcilers: reconcilers,
		logger:      logger,
		reports:     make(map[uuid.UUID]*ingestion.SyncReport),
	}
}

// SyncTenant runs one full sync for a tenant and returns its report.
// Returns ErrSyncInProgress when the tenant's lease is held,
// ErrTenantNotFound when the tenant row is gone, and a connection error
// when the pre-sync probe fails; in the latter case no writes occurred.
func (o *Orchestrator) SyncTenant(ctx context.Context, tenantID uuid.UUID) (*ingestion.SyncReport, error) {
	report := &ingestion.SyncReport{
		TenantID:  tenantID,
		State:     ingestion.SyncStateIdle,
		StartedAt: time.Now(),
	}

	tenant, err := o.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = ingestion.ErrTenantNotFound
		}
		o.finish(report, ingestion.SyncStateFailed, err)
		return report, err
	}

	acquired, err := o.lease.Acquire(ctx, tenantID, o.leaseTTL)
	if err != nil {
		err = fmt.Errorf("sync lease acquire: %w", err)
		o.finish(report, ingestion.SyncStateFailed, err)
		return report, err
	}
	if !acquired {
		// Do not record this attempt; the in-flight run owns the report.
		report.State = ingestion.SyncStateFailed
		report.Error = ingestion.ErrSyncInProgress.Error()
		report.CompletedAt = time.Now()
		return report, ingestion.ErrSyncInProgress
	}
	defer func() {
		if err := o.lease.Release(context.WithoutCancel(ctx), tenantID); err != nil {
			o.logger.Error("failed to release sync lease",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}()

	report.State = ingestion.SyncStateConnectionTest
	if err := o.gateway.TestConnection(ctx, ingestion.ShopCredentials{
		ShopDomain:  tenant.ShopDomain,
		AccessToken: tenant.AccessToken,
	}); err != nil {
		o.finish(report, ingestion.SyncStateFailed, err)
		return report, err
	}

	report.State = ingestion.SyncStateSyncing
	for _, rec := range o.reconcilers {
		if err := ctx.Err(); err != nil {
			o.finish(report, ingestion.SyncStateFailed, err)
			return report, err
		}

		result := rec.Reconcile(ctx, tenant)
		report.Results = append(report.Results, result)
		if result.Error != "" {
			o.logger.Warn("reconciler finished with error",
				zap.String("tenant_id", tenantID.String()),
				zap.String("kind", result.Kind.String()),
				zap.Int("observed", result.Observed),
				zap.String("error", result.Error),
			)
		}
	}

	o.finish(report, ingestion.SyncStateDone, nil)
	o.logger.Info("tenant sync completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total_observed", report.TotalObserved()),
	)
	return report, nil
}

// LastReport returns the most recent report for a tenant, if any
func (o *Orchestrator) LastReport(tenantID uuid.UUID) (*ingestion.SyncReport, bool) {
	o.reportsMu.RLock()
	defer o.reportsMu.RUnlock()
	report, ok := o.reports[tenantID]
	return report, ok
}

// finish seals a report and records it for the status endpoint
func (o *Orchestrator) finish(report *ingestion.SyncReport, state ingestion.SyncState, err error) {
	report.State = state
	report.CompletedAt = time.Now()
	if err != nil {
		report.Error = err.Error()
	}

	o.reportsMu.Lock()
	o.reports[report.TenantID] = report
	o.reportsMu.Unlock()
}
