package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/infrastructure/config"
)

// SyncLeaseFactory creates sync leases based on configuration
type SyncLeaseFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SyncLeaseFactoryOption is a functional option for configuring the factory
type SyncLeaseFactoryOption func(*SyncLeaseFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SyncLeaseFactoryOption {
	return func(f *SyncLeaseFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lease
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) SyncLeaseFactoryOption {
	return func(f *SyncLeaseFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSyncLeaseFactory creates a new factory
func NewSyncLeaseFactory(cfg config.RedisConfig, opts ...SyncLeaseFactoryOption) *SyncLeaseFactory {
	f := &SyncLeaseFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLease creates a sync lease, preferring Redis and falling back to the
// in-memory lease when Redis is unavailable and fallback is allowed.
func (f *SyncLeaseFactory) CreateLease() (ingestion.SyncLease, error) {
	lease, err := NewRedisSyncLease(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis sync lease")
		return lease, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("cache: Redis required for sync lease but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory sync lease", zap.Error(err))
	return NewInMemorySyncLease(), nil
}
