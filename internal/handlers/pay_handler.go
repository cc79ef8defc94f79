package handlers

import (
	"net/http"

	"github.com/farellandr/admitpay/internal/services"
	"github.com/gin-gonic/gin"
)

type PayHandler struct {
	Checkout *services.CheckoutService
}

// Pay always answers with a redirect: to the hosted checkout, the
// already-paid page, or the error page.
func (h *PayHandler) Pay(c *gin.Context) {
	out := h.Checkout.Begin(c.Request.Context(), c.Query("v"), c.Query("type"))
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusSeeOther, out.RedirectURL)
}
