// Package models contains the GORM persistence models. Models map to and
// from domain entities; domain code never sees GORM tags.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// TenantModel is the persistence model for the Tenant entity
type TenantModel struct {
	BaseModel
	ShopDomain  string `gorm:"type:varchar(255);not null;uniqueIndex"`
	AccessToken string `gorm:"type:varchar(255);not null"`
	Email       string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseEntity:  m.BaseModel.ToDomain(),
		ShopDomain:  m.ShopDomain,
		AccessToken: m.AccessToken,
		Email:       m.Email,
	}
}

// TenantModelFromDomain creates a persistence model from a domain Tenant
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{
		ShopDomain:  t.ShopDomain,
		AccessToken: t.AccessToken,
		Email:       t.Email,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// CustomerModel is the persistence model for synced customers.
// (tenant_id, external_id) is the idempotency key.
type CustomerModel struct {
	BaseModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_external"`
	ExternalID string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_customers_tenant_external"`
	Email      string          `gorm:"type:varchar(200)"`
	FirstName  string          `gorm:"type:varchar(100)"`
	LastName   string          `gorm:"type:varchar(100)"`
	TotalSpent decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	OrdersMade int64           `gorm:"not null;default:0"`
	LastSeenAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *ingestion.Customer {
	return &ingestion.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Email:      m.Email,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		TotalSpent: m.TotalSpent,
		OrdersMade: m.OrdersMade,
		LastSeenAt: m.LastSeenAt,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *ingestion.Customer) *CustomerModel {
	m := &CustomerModel{
		TenantID:   c.TenantID,
		ExternalID: c.ExternalID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		TotalSpent: c.TotalSpent,
		OrdersMade: c.OrdersMade,
		LastSeenAt: c.LastSeenAt,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// ProductModel is the persistence model for synced products.
// (tenant_id, external_id) is the idempotency key.
type ProductModel struct {
	BaseModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_external"`
	ExternalID string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_tenant_external"`
	Title      string          `gorm:"type:varchar(500)"`
	Category   string          `gorm:"type:varchar(200)"`
	Price      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Quantity   int64           `gorm:"not null;default:0"`
	LastSeenAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *ingestion.Product {
	return &ingestion.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Title:      m.Title,
		Category:   m.Category,
		Price:      m.Price,
		Quantity:   m.Quantity,
		LastSeenAt: m.LastSeenAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *ingestion.Product) *ProductModel {
	m := &ProductModel{
		TenantID:   p.TenantID,
		ExternalID: p.ExternalID,
		Title:      p.Title,
		Category:   p.Category,
		Price:      p.Price,
		Quantity:   p.Quantity,
		LastSeenAt: p.LastSeenAt,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// OrderModel is the persistence model for synced orders.
// (tenant_id, external_id) is the idempotency key. CustomerRef is the
// shop-side customer id, deliberately not a foreign key.
type OrderModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_external"`
	ExternalID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_tenant_external"`
	CustomerRef string          `gorm:"type:varchar(64)"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency    string          `gorm:"type:varchar(10)"`
	Status      string          `gorm:"type:varchar(30);not null"`
	PlacedAt    time.Time
	LastSeenAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ingestion.Order {
	return &ingestion.Order{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		ExternalID:  m.ExternalID,
		CustomerRef: m.CustomerRef,
		TotalPrice:  m.TotalPrice,
		Currency:    m.Currency,
		Status:      m.Status,
		PlacedAt:    m.PlacedAt,
		LastSeenAt:  m.LastSeenAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *ingestion.Order) *OrderModel {
	m := &OrderModel{
		TenantID:    o.TenantID,
		ExternalID:  o.ExternalID,
		CustomerRef: o.CustomerRef,
		TotalPrice:  o.TotalPrice,
		Currency:    o.Currency,
		Status:      o.Status,
		PlacedAt:    o.PlacedAt,
		LastSeenAt:  o.LastSeenAt,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}
