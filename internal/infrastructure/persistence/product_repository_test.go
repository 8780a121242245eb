package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ProductModel{})
	require.NoError(t, err)

	return db
}

func testProduct(tenantID uuid.UUID, externalID string) *ingestion.Product {
	return &ingestion.Product{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Title:      "Canvas Tote",
		Category:   "Bags",
		Price:      decimal.RequireFromString("12.50"),
		Quantity:   3,
		LastSeenAt: time.Now(),
	}
}

func TestGormProductRepository_Upsert(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("inserts then updates on conflict", func(t *testing.T) {
		tenantID := uuid.New()

		require.NoError(t, repo.Upsert(ctx, testProduct(tenantID, "5001")))

		updated := testProduct(tenantID, "5001")
		updated.Price = decimal.RequireFromString("14.00")
		updated.Quantity = 0
		require.NoError(t, repo.Upsert(ctx, updated))

		count, err := repo.CountForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByExternalID(ctx, tenantID, "5001")
		require.NoError(t, err)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("14.00")))
		assert.Equal(t, int64(0), found.Quantity)
	})

	t.Run("advances last_seen_at on re-upsert", func(t *testing.T) {
		tenantID := uuid.New()

		stale := testProduct(tenantID, "5002")
		stale.LastSeenAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, repo.Upsert(ctx, stale))

		fresh := testProduct(tenantID, "5002")
		require.NoError(t, repo.Upsert(ctx, fresh))

		found, err := repo.FindByExternalID(ctx, tenantID, "5002")
		require.NoError(t, err)
		assert.WithinDuration(t, fresh.LastSeenAt, found.LastSeenAt, time.Second)
	})
}

func TestGormProductRepository_FindByExternalID(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)

	_, err := repo.FindByExternalID(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
