package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// accessTokenHeader carries the per-tenant credential on every request
const accessTokenHeader = "X-Shopify-Access-Token"

// linkNextRe extracts the page_info cursor from the Link response header,
// e.g. <https://x.myshopify.com/admin/api/2024-01/customers.json?page_info=abc&limit=250>; rel="next"
var linkNextRe = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// Config holds Admin API client settings
type Config struct {
	APIVersion     string
	RequestTimeout time.Duration
	PageSize       int
	RatePerSecond  float64
	RateBurst      int
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIVersion == "" {
		return fmt.Errorf("shopify: api version is required")
	}
	if c.PageSize < 1 || c.PageSize > 250 {
		return fmt.Errorf("shopify: page size must be between 1 and 250")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("shopify: request timeout must be positive")
	}
	return nil
}

// Client implements ingestion.StorefrontGateway against the Shopify Admin
// REST API. It performs no retries; the sync layer decides when to
// re-attempt. A shared limiter paces requests under the REST rate budget.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	scheme     string
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithInsecureHTTP switches requests to plain HTTP. Test use only.
func WithInsecureHTTP() Option {
	return func(c *Client) {
		c.scheme = "http"
	}
}

// NewClient creates a new Admin API client
func NewClient(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rps := config.RatePerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := config.RateBurst
	if burst <= 0 {
		burst = 4
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		scheme:  "https",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TestConnection performs a low-cost authenticated read against the shop
func (c *Client) TestConnection(ctx context.Context, creds ingestion.ShopCredentials) error {
	body, err := c.doRequest(ctx, creds, "shop.json", nil)
	if err != nil {
		return err
	}

	var resp shopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", ingestion.ErrInvalidResponse, err)
	}
	if resp.Shop.ID == 0 {
		return ingestion.ErrInvalidResponse
	}
	return nil
}

// FetchCustomers fetches one page of customers
func (c *Client) FetchCustomers(ctx context.Context, creds ingestion.ShopCredentials, pageInfo string) (*ingestion.CustomerPage, error) {
	body, next, err := c.fetchPage(ctx, creds, "customers.json", pageInfo)
	if err != nil {
		return nil, err
	}

	var resp customersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ingestion.ErrInvalidResponse, err)
	}
	return &ingestion.CustomerPage{Customers: resp.Customers, NextPage: next}, nil
}

// FetchProducts fetches one page of products
func (c *Client) FetchProducts(ctx context.Context, creds ingestion.ShopCredentials, pageInfo string) (*ingestion.ProductPage, error) {
	body, next, err := c.fetchPage(ctx, creds, "products.json", pageInfo)
	if err != nil {
		return nil, err
	}

	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ingestion.ErrInvalidResponse, err)
	}
	return &ingestion.ProductPage{Products: resp.Products, NextPage: next}, nil
}

// FetchOrders fetches one page of orders
func (c *Client) FetchOrders(ctx context.Context, creds ingestion.ShopCredentials, pageInfo string) (*ingestion.OrderPage, error) {
	params := url.Values{"status": []string{"any"}}
	body, next, err := c.fetchPageWithParams(ctx, creds, "orders.json", pageInfo, params)
	if err != nil {
		return nil, err
	}

	var resp ordersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ingestion.ErrInvalidResponse, err)
	}
	return &ingestion.OrderPage{Orders: resp.Orders, NextPage: next}, nil
}

// fetchPage fetches one page of a collection endpoint
func (c *Client) fetchPage(ctx context.Context, creds ingestion.ShopCredentials, resource, pageInfo string) ([]byte, string, error) {
	return c.fetchPageWithParams(ctx, creds, resource, pageInfo, nil)
}

// fetchPageWithParams fetches one page with extra query parameters. When a
// page_info cursor is present the Admin API rejects any filter except limit,
// so extras are only sent on the first page.
func (c *Client) fetchPageWithParams(ctx context.Context, creds ingestion.ShopCredentials, resource, pageInfo string, extra url.Values) ([]byte, string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.config.PageSize))
	if pageInfo != "" {
		params.Set("page_info", pageInfo)
	} else {
		for k, vs := range extra {
			for _, v := range vs {
				params.Add(k, v)
			}
		}
	}

	return c.doRequestWithLink(ctx, creds, resource, params)
}

// doRequest performs a GET against one Admin API resource
func (c *Client) doRequest(ctx context.Context, creds ingestion.ShopCredentials, resource string, params url.Values) ([]byte, error) {
	body, _, err := c.doRequestWithLink(ctx, creds, resource, params)
	return body, err
}

// doRequestWithLink performs a GET and also returns the next-page cursor
// parsed from the Link response header (empty when there is no next page).
func (c *Client) doRequestWithLink(ctx context.Context, creds ingestion.ShopCredentials, resource string, params url.Values) ([]byte, string, error) {
	if creds.ShopDomain == "" {
		return nil, "", ingestion.ErrShopInvalidDomain
	}
	if creds.AccessToken == "" {
		return nil, "", ingestion.ErrShopAuthFailed
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ingestion.ErrShopUnreachable, err)
	}

	endpoint := fmt.Sprintf("%s://%s/admin/api/%s/%s", c.scheme, creds.ShopDomain, c.config.APIVersion, resource)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ingestion.ErrShopInvalidDomain, err)
	}
	req.Header.Set(accessTokenHeader, creds.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ingestion.ErrShopUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ingestion.ErrShopUnreachable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", ingestion.ErrShopAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", ingestion.ErrShopInvalidDomain
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, "", ingestion.ErrShopRateLimited
	case resp.StatusCode >= 400:
		return nil, "", fmt.Errorf("%w: HTTP %d", ingestion.ErrRequestFailed, resp.StatusCode)
	}

	return body, parseNextPageInfo(resp.Header.Get("Link")), nil
}

// parseNextPageInfo extracts the rel="next" page_info cursor from a Link header
func parseNextPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := linkNextRe.FindStringSubmatch(linkHeader)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
