package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/logger"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/farellandr/admitpay/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxPageSize = 100
	qrSize      = 256
)

type UpdateFeesRequest struct {
	TotalCourseFees *float64 `json:"total_course_fees" binding:"required,gt=0"`
	Discount        *float64 `json:"discount" binding:"omitempty,gte=0"`
}

// PaymentMetadata is the per-route token view served with an application.
type PaymentMetadata struct {
	Token                string          `json:"token"`
	PaymentType          payment.Route   `json:"payment_type"`
	PayableAmount        decimal.Decimal `json:"payable_amount"`
	Currency             string          `json:"currency"`
	GeneratedAt          time.Time       `json:"generated_at"`
	ExpiresAt            time.Time       `json:"expires_at"`
	TokenUsed            bool            `json:"token_used"`
	UsedAt               *time.Time      `json:"used_at,omitempty"`
	RevokedAt            *time.Time      `json:"revoked_at,omitempty"`
	PaymentLinkID        string          `json:"payment_link_id,omitempty"`
	PaymentLinkURL       string          `json:"payment_link_url,omitempty"`
	PaymentLinkCreatedAt *time.Time      `json:"payment_link_created_at,omitempty"`
	PaymentLinkCount     int             `json:"payment_link_count"`
}

type ApplicationHandler struct {
	Store  *repository.Store
	Links  services.Links
	Logger *zap.Logger
}

func (h *ApplicationHandler) List(c *gin.Context) {
	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "20"))
	if err != nil || limitNum < 1 || limitNum > maxPageSize {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	paymentStatus := c.Query("payment_status")
	if paymentStatus != "" {
		if _, err := payment.ParseStatus(paymentStatus); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment status.")
			return
		}
	}

	apps, total, err := h.Store.ListApplications(c.Request.Context(), repository.ApplicationFilter{
		ApprovalStatus: c.Query("approval_status"),
		PaymentStatus:  paymentStatus,
		Search:         c.Query("q"),
		Page:           pageNum,
		Limit:          limitNum,
	})
	if err != nil {
		logger.For(c, h.Logger).Error("list applications", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving applications.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        total,
		"page":         pageNum,
		"limit":        limitNum,
		"total_pages":  (total + int64(limitNum) - 1) / int64(limitNum),
	})
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	app, ok := h.load(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tokens, err := h.Store.ListTokens(ctx, app.ID)
	if err != nil {
		logger.For(c, h.Logger).Error("list tokens", zap.Uint("application_id", app.ID), zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving application.")
		return
	}
	events, err := h.Store.ListEvents(ctx, app.ID)
	if err != nil {
		logger.For(c, h.Logger).Error("list events", zap.Uint("application_id", app.ID), zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving application.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application":      app,
		"payment_status":   app.PaymentStatus,
		"payment_metadata": paymentMetadata(tokens),
		"payment_history":  events,
	})
}

func (h *ApplicationHandler) UpdateFees(c *gin.Context) {
	var req UpdateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}
	app, ok := h.load(c)
	if !ok {
		return
	}

	adminFilled := models.JSONMap{}
	for k, v := range app.AdminFilled {
		adminFilled[k] = v
	}
	adminFilled["total_course_fees"] = *req.TotalCourseFees
	if req.Discount != nil {
		adminFilled["discount"] = *req.Discount
	}

	if err := h.Store.UpdateAdminFilled(c.Request.Context(), app.ID, adminFilled); err != nil {
		logger.For(c, h.Logger).Error("update fees", zap.Uint("application_id", app.ID), zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update fees.")
		return
	}
	app.AdminFilled = adminFilled

	fees, err := services.ComputeFees(app)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to compute fees.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_course_fees": fees.Total,
		"discount":          fees.Discount,
		"payable_amount":    fees.Payable,
	})
}

// PaymentQR renders the current pay link of a route as a PNG QR code.
func (h *ApplicationHandler) PaymentQR(c *gin.Context) {
	route, err := payment.ParseRoute(c.DefaultQuery("type", string(payment.RouteRazorpay)))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment type.")
		return
	}
	id, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid application ID.")
		return
	}

	token, err := h.Store.LatestToken(c.Request.Context(), id, route)
	if errors.Is(err, repository.ErrNotFound) {
		helpers.RespondWithError(c, http.StatusNotFound, "No payment link has been issued for this application.")
		return
	}
	if err != nil {
		logger.For(c, h.Logger).Error("latest token", zap.Uint("application_id", id), zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load payment link.")
		return
	}
	if token.TokenUsed || token.Revoked() || token.Expired(time.Now()) {
		helpers.RespondWithError(c, http.StatusGone, "Payment link is no longer valid.")
		return
	}

	png, err := helpers.EncodeQRPNG(h.Links.PayURL(token.Token, route), qrSize)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *ApplicationHandler) Unmatched(c *gin.Context) {
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "50"))
	if err != nil || limitNum < 1 || limitNum > maxPageSize {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}
	items, err := h.Store.ListUnmatched(c.Request.Context(), limitNum)
	if err != nil {
		logger.For(c, h.Logger).Error("list unmatched webhooks", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving webhooks.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmatched": items})
}

func (h *ApplicationHandler) load(c *gin.Context) (*models.Application, bool) {
	id, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid application ID.")
		return nil, false
	}
	app, err := h.Store.GetApplication(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		helpers.RespondWithError(c, http.StatusNotFound, "Application not found.")
		return nil, false
	}
	if err != nil {
		logger.For(c, h.Logger).Error("load application", zap.Uint("application_id", id), zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving application.")
		return nil, false
	}
	return app, true
}

// paymentMetadata keeps the most recent token per route; tokens arrive oldest first.
func paymentMetadata(tokens []models.PaymentToken) map[payment.Route]PaymentMetadata {
	out := make(map[payment.Route]PaymentMetadata, len(payment.Routes))
	for _, t := range tokens {
		out[t.PaymentType] = PaymentMetadata{
			Token:                t.Token,
			PaymentType:          t.PaymentType,
			PayableAmount:        t.PayableAmount,
			Currency:             t.Currency,
			GeneratedAt:          t.GeneratedAt,
			ExpiresAt:            t.ExpiresAt,
			TokenUsed:            t.TokenUsed,
			UsedAt:               t.UsedAt,
			RevokedAt:            t.RevokedAt,
			PaymentLinkID:        t.LinkID,
			PaymentLinkURL:       t.LinkURL,
			PaymentLinkCreatedAt: t.LinkCreatedAt,
			PaymentLinkCount:     t.LinkCount,
		}
	}
	return out
}
