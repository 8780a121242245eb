package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/shopsync/backend/internal/application/identity"
	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/auth"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
)

// memTenantRepo is an in-memory identity.TenantRepository for handler tests
type memTenantRepo struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*identity.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{tenants: make(map[uuid.UUID]*identity.Tenant)}
}

func (r *memTenantRepo) Create(_ context.Context, tenant *identity.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.ShopDomain == tenant.ShopDomain {
			return shared.ErrAlreadyExists
		}
	}
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *memTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tenants[id]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memTenantRepo) FindByShopDomain(_ context.Context, shopDomain string) (*identity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.ShopDomain == shopDomain {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memTenantRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	return ids, nil
}

// memGateway serves a single fixed page per collection
type memGateway struct {
	connectionErr error
}

func (g *memGateway) TestConnection(_ context.Context, _ ingestion.ShopCredentials) error {
	return g.connectionErr
}

func (g *memGateway) FetchCustomers(_ context.Context, _ ingestion.ShopCredentials, _ string) (*ingestion.CustomerPage, error) {
	return &ingestion.CustomerPage{Customers: []ingestion.ShopCustomer{
		{ID: 1, Email: "a@example.com", TotalSpent: "10.00"},
	}}, nil
}

func (g *memGateway) FetchProducts(_ context.Context, _ ingestion.ShopCredentials, _ string) (*ingestion.ProductPage, error) {
	return &ingestion.ProductPage{}, nil
}

func (g *memGateway) FetchOrders(_ context.Context, _ ingestion.ShopCredentials, _ string) (*ingestion.OrderPage, error) {
	return &ingestion.OrderPage{}, nil
}

// memCustomerRepo satisfies ingestion.CustomerRepository
type memCustomerRepo struct {
	mu    sync.Mutex
	store map[string]*ingestion.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{store: make(map[string]*ingestion.Customer)}
}

func (r *memCustomerRepo) Upsert(_ context.Context, c *ingestion.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[c.TenantID.String()+"/"+c.ExternalID] = c
	return nil
}

func (r *memCustomerRepo) FindByExternalID(_ context.Context, tenantID uuid.UUID, externalID string) (*ingestion.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.store[tenantID.String()+"/"+externalID]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) CountForTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, c := range r.store {
		if c.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

// memLease is a process-local ingestion.SyncLease
type memLease struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newMemLease() *memLease {
	return &memLease{held: make(map[uuid.UUID]bool)}
}

func (l *memLease) Acquire(_ context.Context, tenantID uuid.UUID, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[tenantID] {
		return false, nil
	}
	l.held[tenantID] = true
	return true, nil
}

func (l *memLease) Release(_ context.Context, tenantID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, tenantID)
	return nil
}

// handlerFixture bundles the service graph behind the HTTP handlers
type handlerFixture struct {
	tenantRepo *memTenantRepo
	gateway    *memGateway
	lease      *memLease

	jwtService    *auth.JWTService
	tenantService *identityapp.TenantService
	orchestrator  *ingestionapp.Orchestrator
}

func newHandlerFixture() *handlerFixture {
	tenantRepo := newMemTenantRepo()
	gateway := &memGateway{}
	lease := newMemLease()
	logger := zap.NewNop()

	reconcilers := []ingestionapp.Reconciler{
		ingestionapp.NewCustomerReconciler(gateway, newMemCustomerRepo(), logger),
	}

	return &handlerFixture{
		tenantRepo:    tenantRepo,
		gateway:       gateway,
		lease:         lease,
		jwtService:    auth.NewJWTService("test-secret", "shopsync", time.Hour),
		tenantService: identityapp.NewTenantService(tenantRepo, gateway),
		orchestrator:  ingestionapp.NewOrchestrator(tenantRepo, gateway, lease, time.Minute, reconcilers, logger),
	}
}

// asTenant is a test middleware that injects the tenant identity the way
// the JWT middleware would
func asTenant(tenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTTenantIDKey, tenantID.String())
		c.Next()
	}
}
