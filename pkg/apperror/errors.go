package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation reports malformed or out-of-range input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ErrAlreadyProcessed reports a conflicting re-processing attempt on a
// payment session that already left the PENDING state.
func ErrAlreadyProcessed() *AppError {
	return New("VAL_002", "Payment session has already been processed", http.StatusConflict)
}

// ---- Uniqueness (DUP) ----

// Duplicate reports a uniqueness conflict (registration fields, double payment).
func Duplicate(message string) *AppError {
	return New("DUP_001", message, http.StatusConflict)
}

// ---- Wallet Business Logic (WAL) ----

func ErrInsufficientFunds() *AppError {
	return New("WAL_001", "Insufficient balance in wallet", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WAL_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- One-Time Token (TOK) ----

func ErrTokenInvalid() *AppError {
	return New("TOK_001", "Confirmation token is not valid", http.StatusUnauthorized)
}

func ErrTokenExpired() *AppError {
	return New("TOK_002", "Confirmation token has expired", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps a data-integrity violation or downstream dependency
// failure as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrNotificationFailure reports a failed token delivery.
func ErrNotificationFailure(err error) *AppError {
	return Wrap("SYS_002", "Could not deliver confirmation token", http.StatusInternalServerError, err)
}
