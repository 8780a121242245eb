package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

func setupTenantRouter(f *handlerFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTenantHandler(f.tenantService, f.jwtService)

	r := gin.New()
	r.POST("/tenants", h.Connect)
	return r
}

func setupMeRouter(f *handlerFixture, tenantID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTenantHandler(f.tenantService, f.jwtService)

	r := gin.New()
	r.GET("/tenants/me", asTenant(tenantID), h.Me)
	return r
}

func connectBody() string {
	return `{"shop_domain":"alpha.myshopify.com","access_token":"shpat_abc","email":"owner@example.com"}`
}

func TestTenantHandler_Connect(t *testing.T) {
	t.Run("onboards a tenant and issues a token", func(t *testing.T) {
		f := newHandlerFixture()
		router := setupTenantRouter(f)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(connectBody()))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool               `json:"success"`
			Data    ConnectShopResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "alpha.myshopify.com", resp.Data.Tenant.ShopDomain)
		assert.NotEmpty(t, resp.Data.AccessToken)

		// The issued token resolves back to the new tenant
		claims, err := f.jwtService.ValidateAccessToken(resp.Data.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.Data.Tenant.ID, claims.TenantID)

		// The shop credential is never echoed back
		assert.NotContains(t, w.Body.String(), "shpat_abc")
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		f := newHandlerFixture()
		router := setupTenantRouter(f)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(`{"shop_domain":""}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a duplicate shop", func(t *testing.T) {
		f := newHandlerFixture()
		router := setupTenantRouter(f)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(connectBody()))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(connectBody()))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("returns 502 when the probe fails and stores nothing", func(t *testing.T) {
		f := newHandlerFixture()
		f.gateway.connectionErr = ingestion.ErrShopAuthFailed
		router := setupTenantRouter(f)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(connectBody()))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_CONNECTION_FAILED")

		ids, err := f.tenantRepo.ListIDs(req.Context())
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestTenantHandler_Me(t *testing.T) {
	t.Run("returns the caller's tenant", func(t *testing.T) {
		f := newHandlerFixture()
		tenant := onboardTenant(t, f)
		router := setupMeRouter(f, tenant.ID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tenants/me", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenant.ShopDomain)
		assert.NotContains(t, w.Body.String(), tenant.AccessToken)
	})

	t.Run("returns 404 when the tenant row is gone", func(t *testing.T) {
		f := newHandlerFixture()
		router := setupMeRouter(f, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tenants/me", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
