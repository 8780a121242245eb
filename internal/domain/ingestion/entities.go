package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsync/backend/internal/domain/shared"
)

// EntityKind identifies a synchronized collection
type EntityKind string

const (
	EntityKindCustomer EntityKind = "customer"
	EntityKindProduct  EntityKind = "product"
	EntityKindOrder    EntityKind = "order"
)

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// Customer is a shop customer observed during sync. The pair
// (TenantID, ExternalID) is the idempotency key: re-syncing the same
// external id overwrites all mutable fields instead of creating a row.
type Customer struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	TotalSpent decimal.Decimal
	OrdersMade int64
	LastSeenAt time.Time
}

// Product is a shop product observed during sync. Price and stock quantity
// come from the first variant; a variantless product carries zeros.
type Product struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ExternalID string
	Title      string
	Category   string
	Price      decimal.Decimal
	Quantity   int64
	LastSeenAt time.Time
}

// Order is a shop order observed during sync. CustomerRef is the shop-side
// customer id kept as an opaque string; it is never validated against
// Customer rows because the two collections may arrive in either order.
type Order struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	ExternalID  string
	CustomerRef string
	TotalPrice  decimal.Decimal
	Currency    string
	Status      string
	PlacedAt    time.Time
	LastSeenAt  time.Time
}

// OrderStatusPending is the default when the shop reports no status
const OrderStatusPending = "pending"

// CustomerRepository persists synced customers
type CustomerRepository interface {
	// Upsert inserts the customer or overwrites all mutable fields of the
	// existing row keyed by (tenant_id, external_id) in one statement.
	Upsert(ctx context.Context, customer *Customer) error
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Customer, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// ProductRepository persists synced products
type ProductRepository interface {
	Upsert(ctx context.Context, product *Product) error
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Product, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// OrderRepository persists synced orders
type OrderRepository interface {
	Upsert(ctx context.Context, order *Order) error
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Order, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
