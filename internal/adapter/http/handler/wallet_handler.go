package handler

import (
	"virtual-wallet/internal/adapter/http/dto"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
	"virtual-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet credit and balance endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// TopUp handles POST /api/v1/wallet/top-up.
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.walletSvc.TopUp(c.Request.Context(), ports.TopUpRequest{
		Document: req.Document,
		Phone:    req.Phone,
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: result.Balance})
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	var q dto.BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.walletSvc.GetBalance(c.Request.Context(), q.Document, q.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: result.Balance})
}
