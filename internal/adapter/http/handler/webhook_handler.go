package handler

import (
	"encoding/json"
	"io"

	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"
	"gmail-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	headerWebhookSignature = "x-webhook-signature"
	headerWebhookTimestamp = "x-webhook-timestamp"
)

// WebhookHandler handles gateway push notifications. The webhook only
// accelerates reconciliation; the poll loop remains the source of truth,
// so a missed or replayed webhook is harmless.
type WebhookHandler struct {
	reconcileSvc  ports.ReconcileService
	sigSvc        ports.SignatureService
	webhookSecret string
	log           zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconcileSvc ports.ReconcileService, sigSvc ports.SignatureService, webhookSecret string, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconcileSvc:  reconcileSvc,
		sigSvc:        sigSvc,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// HandleCashfree handles POST /webhooks/cashfree.
// The signature covers timestamp + raw body.
func (h *WebhookHandler) HandleCashfree(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	signature := c.GetHeader(headerWebhookSignature)
	timestamp := c.GetHeader(headerWebhookTimestamp)
	if signature == "" || timestamp == "" ||
		!h.sigSvc.Verify(h.webhookSecret, timestamp+string(body), signature) {
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	var payload struct {
		Type string `json:"type"`
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data.Order.OrderID == "" {
		response.Error(c, apperror.Validation("malformed webhook payload"))
		return
	}

	orderID := payload.Data.Order.OrderID
	terminal, err := h.reconcileSvc.Reconcile(c.Request.Context(), orderID)
	if err != nil {
		// Unknown orders are acknowledged so the gateway stops retrying.
		if apperror.HasCode(err, apperror.CodeNotFound) {
			h.log.Warn().Str("order_id", orderID).Msg("webhook for unknown order ignored")
			response.OK(c, gin.H{"order_id": orderID, "ignored": true})
			return
		}
		response.Error(c, err)
		return
	}

	h.log.Info().Str("order_id", orderID).Str("type", payload.Type).Bool("terminal", terminal).Msg("webhook reconciled")
	response.OK(c, gin.H{"order_id": orderID, "terminal": terminal})
}
