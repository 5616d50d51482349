package handler

import (
	"time"

	"virtual-wallet/internal/adapter/http/dto"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
	"virtual-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment session endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// InitPayment handles POST /api/v1/payments/init.
func (h *PaymentHandler) InitPayment(c *gin.Context) {
	var req dto.InitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.paymentSvc.InitPayment(c.Request.Context(), ports.InitPaymentRequest{
		Document: req.Document,
		Phone:    req.Phone,
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.InitPaymentResponse{
		SessionID: result.SessionID.String(),
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// ConfirmPayment handles POST /api/v1/payments/confirm.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		response.Error(c, apperror.Validation("session_id must be a valid UUID"))
		return
	}

	result, err := h.paymentSvc.ConfirmPayment(c.Request.Context(), ports.ConfirmPaymentRequest{
		SessionID: sessionID,
		Token:     req.Token6,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ConfirmPaymentResponse{Balance: result.Balance})
}
