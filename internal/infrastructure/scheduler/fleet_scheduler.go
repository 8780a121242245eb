package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

// TenantLister enumerates the tenants to sync. Listing happens at the
// start of every cycle, never cached, so tenants onboarded mid-cycle are
// picked up on the next one.
type TenantLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SyncRunner runs one tenant's sync and reports its outcome
type SyncRunner interface {
	SyncTenant(ctx context.Context, tenantID uuid.UUID) (*ingestion.SyncReport, error)
}

// FleetSchedulerConfig holds configuration for the fleet scheduler
type FleetSchedulerConfig struct {
	// Interval is the fleet cycle period
	Interval time.Duration
	// StartupDelay is how long after Start the first cycle runs
	StartupDelay time.Duration
	// TenantPacing is the delay between tenants within a cycle, keeping
	// the process under the vendor API's rate budget
	TenantPacing time.Duration
}

// DefaultFleetSchedulerConfig returns default configuration
func DefaultFleetSchedulerConfig() FleetSchedulerConfig {
	return FleetSchedulerConfig{
		Interval:     time.Hour,
		StartupDelay: 10 * time.Second,
		TenantPacing: time.Second,
	}
}

// Validate validates the configuration
func (c *FleetSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.StartupDelay < 0 || c.TenantPacing < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ErrInvalidConfig indicates an invalid scheduler configuration
var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// FleetScheduler iterates all known tenants once per cycle and once
// shortly after process start, invoking the sync runner for each tenant
// sequentially. One tenant's failure is logged and never stops the loop.
// The scheduler owns its goroutine: Start/Stop bound its lifecycle.
type FleetScheduler struct {
	config  FleetSchedulerConfig
	tenants TenantLister
	runner  SyncRunner
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewFleetScheduler creates a new fleet scheduler
func NewFleetScheduler(config FleetSchedulerConfig, tenants TenantLister, runner SyncRunner, logger *zap.Logger) (*FleetScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &FleetScheduler{
		config:  config,
		tenants: tenants,
		runner:  runner,
		logger:  logger,
	}, nil
}

// Start starts the scheduler loop
func (s *FleetScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("fleet scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("startup_delay", s.config.StartupDelay),
		zap.Duration("tenant_pacing", s.config.TenantPacing),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *FleetScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("fleet scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("fleet scheduler stop timed out")
		return ctx.Err()
	}
}

// runLoop runs one cycle shortly after start, then one per interval
func (s *FleetScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.config.StartupDelay):
	}
	s.syncFleet(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncFleet(ctx)
		}
	}
}

// syncFleet runs one full cycle over all tenants
func (s *FleetScheduler) syncFleet(ctx context.Context) {
	start := time.Now()

	tenantIDs, err := s.tenants.ListIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list tenants for fleet cycle", zap.Error(err))
		return
	}
	if len(tenantIDs) == 0 {
		s.logger.Debug("no tenants to sync")
		return
	}

	s.logger.Info("fleet cycle started", zap.Int("tenant_count", len(tenantIDs)))

	synced, failed := 0, 0
	for i, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return
		}

		report, err := s.runner.SyncTenant(ctx, tenantID)
		switch {
		case errors.Is(err, ingestion.ErrSyncInProgress):
			s.logger.Info("tenant sync skipped, already in progress",
				zap.String("tenant_id", tenantID.String()),
			)
		case err != nil:
			failed++
			s.logger.Error("tenant sync failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		default:
			synced++
			s.logger.Info("tenant synced",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("total_observed", report.TotalObserved()),
			)
		}

		// Inter-tenant pacing, skipped after the last tenant
		if i < len(tenantIDs)-1 && s.config.TenantPacing > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.config.TenantPacing):
			}
		}
	}

	s.logger.Info("fleet cycle completed",
		zap.Int("synced", synced),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
}
