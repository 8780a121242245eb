package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Shopify webhook headers
const (
	webhookTopicHeader  = "X-Shopify-Topic"
	webhookDomainHeader = "X-Shopify-Shop-Domain"
)

// WebhookHandler accepts Shopify webhook deliveries. Payloads are
// acknowledged and logged only; the periodic sync remains the source of
// truth, so a dropped delivery is harmless.
type WebhookHandler struct {
	logger *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{logger: logger}
}

// Receive acknowledges a webhook delivery
func (h *WebhookHandler) Receive(c *gin.Context) {
	h.logger.Info("webhook received",
		zap.String("topic", c.GetHeader(webhookTopicHeader)),
		zap.String("shop_domain", c.GetHeader(webhookDomainHeader)),
	)
	c.Status(http.StatusOK)
}
