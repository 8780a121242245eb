package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const syncLeaseKeyPrefix = "shopsync:sync_lease:"

// RedisConfig holds Redis connection settings for the lease store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisSyncLease enforces per-tenant sync mutual exclusion across process
// instances using SET NX with a TTL. The TTL bounds how long a crashed
// process can hold a tenant's lease.
type RedisSyncLease struct {
	client *redis.Client
}

// NewRedisSyncLease creates a Redis-backed sync lease, verifying connectivity
func NewRedisSyncLease(cfg RedisConfig) (*RedisSyncLease, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis unavailable: %w", err)
	}

	return &RedisSyncLease{client: client}, nil
}

func leaseKey(tenantID uuid.UUID) string {
	return syncLeaseKeyPrefix + tenantID.String()
}

// Acquire takes the lease for a tenant, returning false if it is held
func (l *RedisSyncLease) Acquire(ctx context.Context, tenantID uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKey(tenantID), time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: failed to acquire sync lease: %w", err)
	}
	return ok, nil
}

// Release frees the lease for a tenant
func (l *RedisSyncLease) Release(ctx context.Context, tenantID uuid.UUID) error {
	if err := l.client.Del(ctx, leaseKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("cache: failed to release sync lease: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection
func (l *RedisSyncLease) Close() error {
	return l.client.Close()
}
