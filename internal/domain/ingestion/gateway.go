package ingestion

import "context"

// ShopCredentials identifies one tenant's storefront connection
type ShopCredentials struct {
	ShopDomain  string
	AccessToken string
}

// ShopCustomer is a raw customer record as returned by the shop API
type ShopCustomer struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TotalSpent string `json:"total_spent"`
	OrdersMade int64  `json:"orders_count"`
}

// ShopVariant is a raw product variant record
type ShopVariant struct {
	ID                int64  `json:"id"`
	Price             string `json:"price"`
	InventoryQuantity int64  `json:"inventory_quantity"`
}

// ShopProduct is a raw product record as returned by the shop API
type ShopProduct struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	ProductType string        `json:"product_type"`
	Variants    []ShopVariant `json:"variants"`
}

// ShopOrderCustomer is the embedded customer reference on an order
type ShopOrderCustomer struct {
	ID int64 `json:"id"`
}

// ShopOrder is a raw order record as returned by the shop API
type ShopOrder struct {
	ID              int64              `json:"id"`
	TotalPrice      string             `json:"total_price"`
	Currency        string             `json:"currency"`
	FinancialStatus string             `json:"financial_status"`
	CreatedAt       string             `json:"created_at"`
	Customer        *ShopOrderCustomer `json:"customer"`
}

// CustomerPage is one page of customers plus the cursor to the next page
type CustomerPage struct {
	Customers []ShopCustomer
	NextPage  string
}

// ProductPage is one page of products plus the cursor to the next page
type ProductPage struct {
	Products []ShopProduct
	NextPage  string
}

// OrderPage is one page of orders plus the cursor to the next page
type OrderPage struct {
	Orders   []ShopOrder
	NextPage string
}

// StorefrontGateway is the read surface of the vendor shop API. Every call
// is bounded by a per-request timeout; transport, auth and HTTP failures
// normalize to the connection error class. Collection fetches are lazy:
// callers pull one page at a time via the opaque pageInfo cursor (empty
// cursor means first page; an empty NextPage means the sequence is done).
// Retry policy lives with the caller, never here.
type StorefrontGateway interface {
	// TestConnection performs a low-cost authenticated read against the shop
	TestConnection(ctx context.Context, creds ShopCredentials) error

	FetchCustomers(ctx context.Context, creds ShopCredentials, pageInfo string) (*CustomerPage, error)
	FetchProducts(ctx context.Context, creds ShopCredentials, pageInfo string) (*ProductPage, error)
	FetchOrders(ctx context.Context, creds ShopCredentials, pageInfo string) (*OrderPage, error)
}
