package handlers

import (
	"io"
	"net/http"

	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/logger"
	"github.com/farellandr/admitpay/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	Reconcile           *services.ReconcileService
	RazorpaySecret      string
	XenditCallbackToken string
	Logger              *zap.Logger
}

func (h *WebhookHandler) Razorpay(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" || h.RazorpaySecret == "" || !helpers.VerifyHMACHex(body, signature, h.RazorpaySecret) {
		logger.For(c, h.Logger).Warn("razorpay webhook signature rejected")
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid signature.")
		return
	}

	n, err := gateway.ParseRazorpayWebhook(body, c.GetHeader("X-Razorpay-Event-Id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload.")
		return
	}
	h.apply(c, n)
}

func (h *WebhookHandler) Xendit(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	if h.XenditCallbackToken == "" || !helpers.EqualSecret(c.GetHeader("x-callback-token"), h.XenditCallbackToken) {
		logger.For(c, h.Logger).Warn("xendit callback token rejected")
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid callback token.")
		return
	}

	n, err := gateway.ParseXenditCallback(body)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload.")
		return
	}
	h.apply(c, n)
}

func (h *WebhookHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unable to read request body.")
		return nil, false
	}
	return body, true
}

// apply acknowledges everything it could parse, including events that match
// no application; only storage failures ask the gateway to retry.
func (h *WebhookHandler) apply(c *gin.Context, n *gateway.Notification) {
	result, err := h.Reconcile.Apply(c.Request.Context(), n)
	if err != nil {
		logger.For(c, h.Logger).Error("webhook reconciliation failed",
			zap.String("provider", n.Provider), zap.String("event_id", n.EventID), zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process webhook.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"duplicate": result.Duplicate,
	})
}
