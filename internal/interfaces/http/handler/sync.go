package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// SyncHandler exposes the manual sync trigger and the status endpoint
type SyncHandler struct {
	BaseHandler
	orchestrator *ingestionapp.Orchestrator
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(orchestrator *ingestionapp.Orchestrator) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator}
}

// Trigger runs a sync for the caller's tenant, synchronously. Concurrent
// triggers for the same tenant get 409 while the first run holds the lease.
func (h *SyncHandler) Trigger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	report, err := h.orchestrator.SyncTenant(c.Request.Context(), tenantID)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrSyncInProgress):
			h.ErrorWithCode(c, dto.ErrCodeSyncInProgress, "A sync is already running for this tenant")
		case errors.Is(err, ingestion.ErrTenantNotFound):
			h.NotFound(c, "Tenant not found")
		case ingestion.IsConnectionError(err):
			h.ErrorWithCode(c, dto.ErrCodeConnectionFailed, err.Error())
		default:
			h.ErrorWithCode(c, dto.ErrCodeSyncFailed, err.Error())
		}
		return
	}

	h.Success(c, report)
}

// Status returns the most recent sync report for the caller's tenant
func (h *SyncHandler) Status(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant identity")
		return
	}

	report, ok := h.orchestrator.LastReport(tenantID)
	if !ok {
		h.Success(c, ingestion.SyncReport{
			TenantID: tenantID,
			State:    ingestion.SyncStateIdle,
		})
		return
	}
	h.Success(c, report)
}
