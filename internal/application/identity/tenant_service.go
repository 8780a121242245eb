package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
)

// TenantService handles tenant onboarding and lookup. A tenant record is
// only created after the shop connection probe succeeds, so a stored
// tenant always had working credentials at least once.
type TenantService struct {
	tenantRepo identity.TenantRepository
	gateway    ingestion.StorefrontGateway
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo identity.TenantRepository, gateway ingestion.StorefrontGateway) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		gateway:    gateway,
	}
}

// ConnectShopRequest carries the onboarding input
type ConnectShopRequest struct {
	ShopDomain  string
	AccessToken string
	Email       string
}

// Connect onboards a new tenant: the shop connection is verified first and
// nothing is stored when the probe fails. A shop domain can only be
// connected once.
func (s *TenantService) Connect(ctx context.Context, req ConnectShopRequest) (*identity.Tenant, error) {
	domain := identity.NormalizeShopDomain(req.ShopDomain)

	if _, err := s.tenantRepo.FindByShopDomain(ctx, domain); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Shop is already connected")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.gateway.TestConnection(ctx, ingestion.ShopCredentials{
		ShopDomain:  domain,
		AccessToken: req.AccessToken,
	}); err != nil {
		return nil, fmt.Errorf("shop connection test failed: %w", err)
	}

	tenant, err := identity.NewTenant(domain, req.AccessToken, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Shop is already connected")
		}
		return nil, err
	}
	return tenant, nil
}

// Get resolves a tenant by id
func (s *TenantService) Get(ctx context.Context, tenantID uuid.UUID) (*identity.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, tenantID)
}
