package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/domain/models"
	service "github.com/mamadbah2/agrifleet/internal/service/whatsapp"
)

// OperatorTokenHeader carries the verify token on operator relays.
const OperatorTokenHeader = "X-Verify-Token"

// WebhookHandler serves the WhatsApp callbacks and the manager relay.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive dispatches the chat commands in a callback and answers with one
// outcome per message. Commands have already run when a reply fails, so the
// callback is still acknowledged and Meta does not redeliver it.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	outcomes, err := h.svc.HandleWebhook(c.Request.Context(), payload)
	if err != nil {
		h.logger.Error("some command replies were not delivered", zap.Error(err))
	}
	if outcomes == nil {
		outcomes = []models.MessageOutcome{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": outcomes})
}

// MessageManager relays an operator note to the fleet manager. The caller
// must present the webhook verify token.
func (h *WebhookHandler) MessageManager(c *gin.Context) {
	if err := h.svc.AuthorizeOperator(c.GetHeader(OperatorTokenHeader)); err != nil {
		h.logger.Warn("manager relay refused", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req models.ManagerMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.MessageManager(c.Request.Context(), req); err != nil {
		h.logger.Error("failed to message fleet manager", zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrManagerNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusAccepted)
}
