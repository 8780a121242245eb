package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySyncLease_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires a free lease", func(t *testing.T) {
		lease := NewInMemorySyncLease()

		acquired, err := lease.Acquire(ctx, uuid.New(), time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("rejects a held lease", func(t *testing.T) {
		lease := NewInMemorySyncLease()
		tenantID := uuid.New()

		acquired, err := lease.Acquire(ctx, tenantID, time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		acquired, err = lease.Acquire(ctx, tenantID, time.Minute)
		require.NoError(t, err)
		assert.False(t, acquired)
	})

	t.Run("leases are per tenant", func(t *testing.T) {
		lease := NewInMemorySyncLease()

		acquired, err := lease.Acquire(ctx, uuid.New(), time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		acquired, err = lease.Acquire(ctx, uuid.New(), time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("reclaims an expired lease", func(t *testing.T) {
		lease := NewInMemorySyncLease()
		tenantID := uuid.New()

		acquired, err := lease.Acquire(ctx, tenantID, time.Millisecond)
		require.NoError(t, err)
		require.True(t, acquired)

		time.Sleep(5 * time.Millisecond)

		acquired, err = lease.Acquire(ctx, tenantID, time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("only one concurrent acquire wins", func(t *testing.T) {
		lease := NewInMemorySyncLease()
		tenantID := uuid.New()

		const attempts = 20
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				acquired, err := lease.Acquire(ctx, tenantID, time.Minute)
				assert.NoError(t, err)
				if acquired {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}

func TestInMemorySyncLease_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("release frees the lease", func(t *testing.T) {
		lease := NewInMemorySyncLease()
		tenantID := uuid.New()

		acquired, err := lease.Acquire(ctx, tenantID, time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		require.NoError(t, lease.Release(ctx, tenantID))

		acquired, err = lease.Acquire(ctx, tenantID, time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("releasing an unheld lease is a no-op", func(t *testing.T) {
		lease := NewInMemorySyncLease()
		assert.NoError(t, lease.Release(ctx, uuid.New()))
	})
}
