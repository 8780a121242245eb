package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/shopsync/backend/internal/application/identity"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/auth"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// TenantHandler handles tenant onboarding and lookup
type TenantHandler struct {
	BaseHandler
	tenantService *identityapp.TenantService
	jwtService    *auth.JWTService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *identityapp.TenantService, jwtService *auth.JWTService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		jwtService:    jwtService,
	}
}

// ConnectShopRequest is the onboarding request body
type ConnectShopRequest struct {
	ShopDomain  string `json:"shop_domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
}

// TenantResponse is the tenant representation returned by the API.
// The access token is never echoed back.
type TenantResponse struct {
	ID         string    `json:"id"`
	ShopDomain string    `json:"shop_domain"`
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConnectShopResponse bundles the new tenant with its API token
type ConnectShopResponse struct {
	Tenant      TenantResponse `json:"tenant"`
	AccessToken string         `json:"access_token"`
}

// Connect onboards a new tenant. The shop connection is probed before
// anything is stored; a failing probe returns 502 with the reason.
func (h *TenantHandler) Connect(c *gin.Context) {
	var req ConnectShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.Connect(c.Request.Context(), identityapp.ConnectShopRequest{
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
		Email:       req.Email,
	})
	if err != nil {
		var domainErr *shared.DomainError
		switch {
		case errors.As(err, &domainErr) && domainErr.Code == "ALREADY_EXISTS":
			h.Conflict(c, domainErr.Message)
		case ingestion.IsConnectionError(err):
			h.ErrorWithCode(c, dto.ErrCodeConnectionFailed, err.Error())
		case errors.As(err, &domainErr):
			h.BadRequest(c, domainErr.Message)
		default:
			h.Internal(c, "Failed to connect shop")
		}
		return
	}

	token, err := h.jwtService.GenerateAccessToken(tenant.ID)
	if err != nil {
		h.Internal(c, "Failed to issue access token")
		return
	}

	h.Created(c, ConnectShopResponse{
		Tenant: TenantResponse{
			ID:         tenant.ID.String(),
			ShopDomain: tenant.ShopDomain,
			Email:      tenant.Email,
			CreatedAt:  tenant.CreatedAt,
		},
		AccessToken: token,
	})
}

// Me returns the caller's tenant
func (h *TenantHandler) Me(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Tenant not found")
			return
		}
		h.Internal(c, "Failed to load tenant")
		return
	}

	h.Success(c, TenantResponse{
		ID:         tenant.ID.String(),
		ShopDomain: tenant.ShopDomain,
		Email:      tenant.Email,
		CreatedAt:  tenant.CreatedAt,
	})
}
