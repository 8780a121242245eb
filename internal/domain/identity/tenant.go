package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/shopsync/backend/internal/domain/shared"
)

// Tenant represents one connected storefront account. Each tenant is bound
// to exactly one Shopify shop; the shop domain and access token are fixed at
// onboarding (credential rotation is not supported).
type Tenant struct {
	shared.BaseEntity
	ShopDomain  string
	AccessToken string
	Email       string
}

// NewTenant creates a tenant for a connected shop
func NewTenant(shopDomain, accessToken, email string) (*Tenant, error) {
	shopDomain = NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain cannot be empty")
	}
	if accessToken == "" {
		return nil, shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token cannot be empty")
	}
	return &Tenant{
		BaseEntity:  shared.NewBaseEntity(),
		ShopDomain:  shopDomain,
		AccessToken: accessToken,
		Email:       strings.ToLower(email),
	}, nil
}

// NormalizeShopDomain strips the scheme and trailing slashes from a shop
// domain so "https://x.myshopify.com/" and "x.myshopify.com" compare equal.
func NormalizeShopDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByShopDomain(ctx context.Context, shopDomain string) (*Tenant, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
