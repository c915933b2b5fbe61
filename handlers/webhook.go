package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"consultme/services/payment"
	"consultme/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = int64(65536)

// EventProcessor verifies and applies one provider webhook delivery.
type EventProcessor interface {
	Process(ctx context.Context, payload []byte, signature string) error
}

type WebhookHandler struct {
	Processor EventProcessor
	Logger    *zap.Logger
}

func NewWebhookHandler(p EventProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Processor: p, Logger: logger}
}

// StripeWebhookHandler reads the raw body and Stripe-Signature header. A
// non-2xx answer makes the provider redeliver.
func (h *WebhookHandler) StripeWebhookHandler(c *gin.Context) {
	logger := getLogger(c, h.Logger)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Unreadable request body", "invalid_payload")
		return
	}

	err = h.Processor.Process(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, payment.ErrWebhookSecretMissing):
		logger.Error("Webhook secret not configured")
		utils.JSONError(c, http.StatusInternalServerError, "Webhook not configured", "webhook_not_configured")
	case errors.Is(err, payment.ErrInvalidSignature):
		utils.JSONError(c, http.StatusBadRequest, "Invalid signature", "invalid_signature")
	case errors.Is(err, payment.ErrEventInFlight):
		utils.JSONError(c, http.StatusConflict, "Event is being processed", "event_in_flight")
	default:
		logger.Error("Failed to process webhook", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process event", "internal_error")
	}
}
