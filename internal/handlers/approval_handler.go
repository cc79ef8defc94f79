package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/logger"
	"github.com/farellandr/admitpay/internal/middleware"
	"github.com/farellandr/admitpay/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ApproveRequest struct {
	ID     uint   `json:"id" binding:"required"`
	Status string `json:"status" binding:"required,oneof=Approved Rejected"`
}

type ApproveResponse struct {
	OK            bool     `json:"ok"`
	Updated       bool     `json:"updated"`
	EmailSent     bool     `json:"emailSent"`
	PaymentToken  string   `json:"paymentToken,omitempty"`
	PaymentURL    string   `json:"paymentUrl,omitempty"`
	PaymentAmount *float64 `json:"paymentAmount,omitempty"`
	DirectPayURL  string   `json:"directPayUrl,omitempty"`
	Note          string   `json:"note,omitempty"`
}

type ApprovalHandler struct {
	Approvals *services.ApprovalService
	Logger    *zap.Logger
}

func (h *ApprovalHandler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	approvedBy := ""
	if claims := middleware.SessionClaims(c); claims != nil {
		approvedBy = claims.Email
	}

	result, err := h.Approvals.Decide(c.Request.Context(), req.ID, req.Status, approvedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Application not found.")
		case errors.Is(err, services.ErrFeesMissing):
			helpers.RespondWithError(c, http.StatusBadRequest, "Total course fee is not set for this application.")
		case errors.Is(err, services.ErrNothingPayable):
			helpers.RespondWithError(c, http.StatusBadRequest, "Discount covers the full course fee, there is nothing to collect.")
		case errors.Is(err, services.ErrInvalidDecision):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrAlreadyPaid):
			helpers.RespondWithError(c, http.StatusConflict, "Application fee has already been paid.")
		default:
			logger.For(c, h.Logger).Error("approval failed", zap.Uint("application_id", req.ID), zap.Error(err))
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process approval.")
		}
		return
	}

	resp := ApproveResponse{OK: true, Updated: true, EmailSent: result.EmailSent}
	if result.GatewayToken != nil {
		amount := result.Fees.Payable.InexactFloat64()
		resp.PaymentToken = result.GatewayToken.Token
		resp.PaymentURL = result.GatewayPayURL
		resp.PaymentAmount = &amount
		resp.DirectPayURL = result.DirectPayURL
	}
	if !result.EmailSent {
		resp.Note = "email not sent"
	}
	c.JSON(http.StatusOK, resp)
}
