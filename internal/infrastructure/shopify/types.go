package shopify

import "github.com/shopsync/backend/internal/domain/ingestion"

// shopResponse is the envelope of GET shop.json
type shopResponse struct {
	Shop struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Domain string `json:"domain"`
		Email  string `json:"email"`
	} `json:"shop"`
}

// customersResponse is the envelope of GET customers.json
type customersResponse struct {
	Customers []ingestion.ShopCustomer `json:"customers"`
}

// productsResponse is the envelope of GET products.json
type productsResponse struct {
	Products []ingestion.ShopProduct `json:"products"`
}

// ordersResponse is the envelope of GET orders.json
type ordersResponse struct {
	Orders []ingestion.ShopOrder `json:"orders"`
}
