package handler

import (
	"net/http"

	"virtual-wallet/internal/adapter/http/dto"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
	"virtual-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer registration endpoints.
type CustomerHandler struct {
	customerSvc ports.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerSvc ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc}
}

// Register handles POST /api/v1/clients/register.
func (h *CustomerHandler) Register(c *gin.Context) {
	var req dto.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.customerSvc.Register(c.Request.Context(), ports.RegisterCustomerRequest{
		Document: req.Document,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterClientResponse{
		CustomerID: result.CustomerID.String(),
	})
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
