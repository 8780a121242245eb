package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
)

func setupTenantTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.TenantModel{})
	require.NoError(t, err)

	return db
}

func newTestTenant(t *testing.T, shopDomain string) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant(shopDomain, "shpat_test_token", "owner@example.com")
	require.NoError(t, err)
	return tenant
}

func TestGormTenantRepository_Create(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	t.Run("creates a new tenant", func(t *testing.T) {
		tenant := newTestTenant(t, "alpha.myshopify.com")

		err := repo.Create(ctx, tenant)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, "alpha.myshopify.com", found.ShopDomain)
		assert.Equal(t, "shpat_test_token", found.AccessToken)
	})

	t.Run("rejects a duplicate shop domain", func(t *testing.T) {
		dup := newTestTenant(t, "alpha.myshopify.com")

		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormTenantRepository_FindByShopDomain(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant := newTestTenant(t, "beta.myshopify.com")
	require.NoError(t, repo.Create(ctx, tenant))

	t.Run("finds by exact domain", func(t *testing.T) {
		found, err := repo.FindByShopDomain(ctx, "beta.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
	})

	t.Run("normalizes scheme and trailing slash", func(t *testing.T) {
		found, err := repo.FindByShopDomain(ctx, "https://Beta.myshopify.com/")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
	})

	t.Run("returns not found for unknown domain", func(t *testing.T) {
		_, err := repo.FindByShopDomain(ctx, "unknown.myshopify.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for empty domain", func(t *testing.T) {
		_, err := repo.FindByShopDomain(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTenantRepository_FindByID(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTenantRepository_ListIDs(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	t.Run("returns empty list without tenants", func(t *testing.T) {
		ids, err := repo.ListIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("lists all tenants", func(t *testing.T) {
		first := newTestTenant(t, "one.myshopify.com")
		second := newTestTenant(t, "two.myshopify.com")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		ids, err := repo.ListIDs(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Contains(t, ids, first.ID)
		assert.Contains(t, ids, second.ID)
	})
}
