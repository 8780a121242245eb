package ingestion

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
)

// Reconciler fetches one entity kind from the shop and upserts it locally.
// A run is "attempted" rather than "all succeeded": per-record mapping and
// write failures are logged, counted and skipped, never raised past the
// reconciler boundary. A fetch failure mid-run ends the run with the error
// recorded on the result, leaving already-upserted rows in place.
type Reconciler interface {
	Kind() ingestion.EntityKind
	Reconcile(ctx context.Context, tenant *identity.Tenant) ingestion.KindResult
}

// credsFor builds gateway credentials from a tenant
func credsFor(tenant *identity.Tenant) ingestion.ShopCredentials {
	return ingestion.ShopCredentials{
		ShopDomain:  tenant.ShopDomain,
		AccessToken: tenant.AccessToken,
	}
}

// externalID converts a shop-assigned numeric id. Zero means the record
// carries no usable identity and cannot be keyed.
func externalID(id int64) (string, error) {
	if id == 0 {
		return "", fmt.Errorf("%w: missing external id", ingestion.ErrRecordMapping)
	}
	return strconv.FormatInt(id, 10), nil
}

// parseMoney converts the shop API's string-encoded decimal fields. An
// absent field defaults to zero; a present but malformed one is a mapping
// error so the record is skipped rather than stored with a silent zero.
func parseMoney(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad decimal %q", ingestion.ErrRecordMapping, raw)
	}
	return d, nil
}

// ---------------------------------------------------------------------------
// CustomerReconciler
// ---------------------------------------------------------------------------

// CustomerReconciler reconciles the customers collection
type CustomerReconciler struct {
	gateway ingestion.StorefrontGateway
	repo    ingestion.CustomerRepository
	logger  *zap.Logger
}

// NewCustomerReconciler creates a customer reconciler
func NewCustomerReconciler(gateway ingestion.StorefrontGateway, repo ingestion.CustomerRepository, logger *zap.Logger) *CustomerReconciler {
	return &CustomerReconciler{gateway: gateway, repo: repo, logger: logger}
}

// Kind returns the entity kind this reconciler handles
func (r *CustomerReconciler) Kind() ingestion.EntityKind {
	return ingestion.EntityKindCustomer
}

// Reconcile fetches all customer pages and upserts each record
func (r *CustomerReconciler) Reconcile(ctx context.Context, tenant *identity.Tenant) ingestion.KindResult {
	result := ingestion.KindResult{Kind: r.Kind()}
	creds := credsFor(tenant)
	seenAt := time.Now()

	pageInfo := ""
	for {
		page, err := r.gateway.FetchCustomers(ctx, creds, pageInfo)
		if err != nil {
			result.Error = err.Error()
			return result
		}

		for i := range page.Customers {
			raw := &page.Customers[i]
			customer, err := mapCustomer(tenant.ID, raw, seenAt)
			if err != nil {
				result.Failed++
				r.logger.Warn("skipping customer record",
					zap.String("tenant_id", tenant.ID.String()),
					zap.Int64("shop_id", raw.ID),
					zap.Error(err),
				)
				continue
			}
			result.Observed++
			if err := r.repo.Upsert(ctx, customer); err != nil {
				result.Failed++
				r.logger.Warn("customer upsert failed",
					zap.String("tenant_id", tenant.ID.String()),
					zap.String("external_id", customer.ExternalID),
					zap.Error(err),
				)
			}
		}

		if page.NextPage == "" {
			return result
		}
		pageInfo = page.NextPage
	}
}

// mapCustomer maps a raw shop customer onto the local schema with explicit
// defaults for absent optional fields
func mapCustomer(tenantID uuid.UUID, raw *ingestion.ShopCustomer, seenAt time.Time) (*ingestion.Customer, error) {
	extID, err := externalID(raw.ID)
	if err != nil {
		return nil, err
	}
	spent, err := parseMoney(raw.TotalSpent)
	if err != nil {
		return nil, err
	}

	return &ingestion.Customer{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ExternalID: extID,
		Email:      raw.Email,
		FirstName:  raw.FirstName,
		LastName:   raw.LastName,
		TotalSpent: spent,
		OrdersMade: raw.OrdersMade,
		LastSeenAt: seenAt,
	}, nil
}

// ---------------------------------------------------------------------------
// ProductReconciler
// ---------------------------------------------------------------------------

// ProductReconciler reconciles the products collection
type ProductReconciler struct {
	gateway ingestion.StorefrontGateway
	repo    ingestion.ProductRepository
	logger  *zap.Logger
}

// NewProductReconciler creates a product reconciler
func NewProductReconciler(gateway ingestion.StorefrontGateway, repo ingestion.ProductRepository, logger *zap.Logger) *ProductReconciler {
	return &ProductReconciler{gateway: gateway, repo: repo, logger: logger}
}

// Kind returns the entity kind this reconciler handles
func (r *ProductReconciler) Kind() ingestion.EntityKind {
	return ingestion.EntityKindProduct
}

// Reconcile fetches all product pages and upserts each record
func (r *ProductReconciler) Reconcile(ctx context.Context, tenant *identity.Tenant) ingestion.KindResult {
	result := ingestion.KindResult{Kind: r.Kind()}
	creds := credsFor(tenant)
	seenAt := time.Now()

	pageInfo := ""
	for {
		page, err := r.gateway.FetchProducts(ctx, creds, pageInfo)
		if err != nil {
			result.Error = err.Error()
			return result
		}

		for i := range page.Products {
			raw := &page.Products[i]
			product, err := mapProduct(tenant.ID, raw, seenAt)
			if err != nil {
				result.Failed++
				r.logger.Warn("skipping product record",
					zap.String("tenant_id", tenant.ID.String()),
					zap.Int64("shop_id", raw.ID),
					zap.Error(err),
				)
				continue
			}
			result.Observed++
			if err := r.repo.Upsert(ctx, product); err != nil {
				result.Failed++
				r.logger.Warn("product upsert failed",
					zap.String("tenant_id", tenant.ID.String()),
					zap.String("external_id", product.ExternalID),
					zap.Error(err),
				)
			}
		}

		if page.NextPage == "" {
			return result
		}
		pageInfo = page.NextPage
	}
}

// mapProduct maps a raw shop product onto the local schema. Price and stock
// come from the first variant; a variantless product carries zeros.
func mapProduct(tenantID uuid.UUID, raw *ingestion.ShopProduct, seenAt time.Time) (*ingestion.Product, error) {
	extID, err := externalID(raw.ID)
	if err != nil {
		return nil, err
	}

	price := decimal.Zero
	var quantity int64
	if len(raw.Variants) > 0 {
		first := raw.Variants[0]
		price, err = parseMoney(first.Price)
		if err != nil {
			return nil, err
		}
		quantity = first.InventoryQuantity
	}

	return &ingestion.Product{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ExternalID: extID,
		Title:      raw.Title,
		Category:   raw.ProductType,
		Price:      price,
		Quantity:   quantity,
		LastSeenAt: seenAt,
	}, nil
}

// ---------------------------------------------------------------------------
// OrderReconciler
// ---------------------------------------------------------------------------

// OrderReconciler reconciles the orders collection
type OrderReconciler struct {
	gateway ingestion.StorefrontGateway
	repo    ingestion.OrderRepository
	logger  *zap.Logger
}

// NewOrderReconciler creates an order reconciler
func NewOrderReconciler(gateway ingestion.StorefrontGateway, repo ingestion.OrderRepository, logger *zap.Logger) *OrderReconciler {
	return &OrderReconciler{gateway: gateway, repo: repo, logger: logger}
}

// Kind returns the entity kind this reconciler handles
func (r *OrderReconciler) Kind() ingestion.EntityKind {
	return ingestion.EntityKindOrder
}

// Reconcile fetches all order pages and upserts each record
func (r *OrderReconciler) Reconcile(ctx context.Context, tenant *identity.Tenant) ingestion.KindResult {
	result := ingestion.KindResult{Kind: r.Kind()}
	creds := credsFor(tenant)
	seenAt := time.Now()

	pageInfo := ""
	for {
		page, err := r.gateway.FetchOrders(ctx, creds, pageInfo)
		if err != nil {
			result.Error = err.Error()
			return result
		}

		for i := range page.Orders {
			raw := &page.Orders[i]
			order, err := mapOrder(tenant.ID, raw, seenAt)
			if err != nil {
				result.Failed++
				r.logger.Warn("skipping order record",
					zap.String("tenant_id", tenant.ID.String()),
					zap.Int64("shop_id", raw.ID),
					zap.Error(err),
				)
				continue
			}
			result.Observed++
			if err := r.repo.Upsert(ctx, order); err != nil {
				result.Failed++
				r.logger.Warn("order upsert failed",
					zap.String("tenant_id", tenant.ID.String()),
					zap.String("external_id", order.ExternalID),
					zap.Error(err),
				)
			}
		}

		if page.NextPage == "" {
			return result
		}
		pageInfo = page.NextPage
	}
}

// mapOrder maps a raw shop order onto the local schema. The customer
// reference stays an opaque string: customers and orders may arrive in
// either order within a cycle, so it is never resolved against Customer rows.
func mapOrder(tenantID uuid.UUID, raw *ingestion.ShopOrder, seenAt time.Time) (*ingestion.Order, error) {
	extID, err := externalID(raw.ID)
	if err != nil {
		return nil, err
	}
	total, err := parseMoney(raw.TotalPrice)
	if err != nil {
		return nil, err
	}

	status := raw.FinancialStatus
	if status == "" {
		status = ingestion.OrderStatusPending
	}

	customerRef := ""
	if raw.Customer != nil && raw.Customer.ID != 0 {
		customerRef = strconv.FormatInt(raw.Customer.ID, 10)
	}

	var placedAt time.Time
	if raw.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
			placedAt = t
		}
	}

	return &ingestion.Order{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		ExternalID:  extID,
		CustomerRef: customerRef,
		TotalPrice:  total,
		Currency:    raw.Currency,
		Status:      status,
		PlacedAt:    placedAt,
		LastSeenAt:  seenAt,
	}, nil
}
