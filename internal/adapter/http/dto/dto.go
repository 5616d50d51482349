package dto

// RegisterClientRequest is the request body for customer registration.
type RegisterClientRequest struct {
	Document string `json:"document" binding:"required,min=5,max=20,digits"`
	FullName string `json:"full_name" binding:"required,min=2,max=160"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,min=7,max=20,digits"`
}

// RegisterClientResponse is the response body for successful registration.
type RegisterClientResponse struct {
	CustomerID string `json:"customer_id"`
}

// TopUpRequest is the request body for wallet top-up. Amount is a
// decimal string so precision survives JSON transport.
type TopUpRequest struct {
	Document string `json:"document" binding:"required,min=5,max=20,digits"`
	Phone    string `json:"phone" binding:"required,min=7,max=20,digits"`
	Amount   string `json:"amount" binding:"required,max=32"`
}

// BalanceQuery identifies the wallet for a balance lookup.
type BalanceQuery struct {
	Document string `form:"document" binding:"required,min=5,max=20,digits"`
	Phone    string `form:"phone" binding:"required,min=7,max=20,digits"`
}

// BalanceResponse is the response for balance query and top-up.
type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

// InitPaymentRequest is the request body for starting a payment session.
type InitPaymentRequest struct {
	Document string `json:"document" binding:"required,min=5,max=20,digits"`
	Phone    string `json:"phone" binding:"required,min=7,max=20,digits"`
	Amount   string `json:"amount" binding:"required,max=32"`
}

// InitPaymentResponse identifies the created session. The token travels
// by mail, never in this response.
type InitPaymentResponse struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

// ConfirmPaymentRequest is the request body for confirming a payment.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
	Token6    string `json:"token6" binding:"required,len=6,digits"`
}

// ConfirmPaymentResponse carries the balance after settlement.
type ConfirmPaymentResponse struct {
	Balance float64 `json:"balance"`
}
