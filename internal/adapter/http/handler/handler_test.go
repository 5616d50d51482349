package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"virtual-wallet/internal/adapter/http/dto"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/internal/core/ports/mocks"
	"virtual-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type handlerDeps struct {
	customerSvc *mocks.MockCustomerService
	walletSvc   *mocks.MockWalletService
	paymentSvc  *mocks.MockPaymentService
	router      *gin.Engine
	ctrl        *gomock.Controller
}

func setupRouter(t *testing.T) *handlerDeps {
	ctrl := gomock.NewController(t)
	d := &handlerDeps{
		customerSvc: mocks.NewMockCustomerService(ctrl),
		walletSvc:   mocks.NewMockWalletService(ctrl),
		paymentSvc:  mocks.NewMockPaymentService(ctrl),
		ctrl:        ctrl,
	}
	d.router = SetupRouter(RouterDeps{
		CustomerSvc: d.customerSvc,
		WalletSvc:   d.walletSvc,
		PaymentSvc:  d.paymentSvc,
		Logger:      zerolog.Nop(),
	})
	return d
}

// --- Register ---

func TestRegisterEndpoint_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	customerID := uuid.New()
	d.customerSvc.EXPECT().Register(gomock.Any(), ports.RegisterCustomerRequest{
		Document: "12345678901",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "5511999990000",
	}).Return(&ports.RegisterCustomerResponse{CustomerID: customerID}, nil)

	w := performJSON(d.router, http.MethodPost, "/api/v1/clients/register", dto.RegisterClientRequest{
		Document: "12345678901",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "5511999990000",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), customerID.String())
}

func TestRegisterEndpoint_ValidationFailure(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	w := performJSON(d.router, http.MethodPost, "/api/v1/clients/register", dto.RegisterClientRequest{
		Document: "ABC",
		FullName: "Jane Doe",
		Email:    "bad",
		Phone:    "1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.customerSvc.EXPECT().Register(gomock.Any(), gomock.Any()).
		Return(nil, apperror.Duplicate("Document already registered."))

	w := performJSON(d.router, http.MethodPost, "/api/v1/clients/register", dto.RegisterClientRequest{
		Document: "12345678901",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "5511999990000",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUP_001")
}

// --- TopUp ---

func TestTopUpEndpoint_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().TopUp(gomock.Any(), ports.TopUpRequest{
		Document: "12345678901",
		Phone:    "5511999990000",
		Amount:   "100.50",
	}).Return(&ports.BalanceResult{BalanceMinor: 10050, Balance: 100.50}, nil)

	w := performJSON(d.router, http.MethodPost, "/api/v1/wallet/top-up", dto.TopUpRequest{
		Document: "12345678901",
		Phone:    "5511999990000",
		Amount:   "100.50",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data dto.BalanceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 100.50, resp.Data.Balance, 0.001)
}

func TestTopUpEndpoint_MissingAmount(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	w := performJSON(d.router, http.MethodPost, "/api/v1/wallet/top-up", map[string]string{
		"document": "12345678901",
		"phone":    "5511999990000",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Balance ---

func TestBalanceEndpoint_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().GetBalance(gomock.Any(), "12345678901", "5511999990000").
		Return(&ports.BalanceResult{BalanceMinor: 5051, Balance: 50.51}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance?document=12345678901&phone=5511999990000", nil)
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "50.51")
}

func TestBalanceEndpoint_MissingQuery(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil)
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- InitPayment ---

func TestInitPaymentEndpoint_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	sessionID := uuid.New()
	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	d.paymentSvc.EXPECT().InitPayment(gomock.Any(), ports.InitPaymentRequest{
		Document: "12345678901",
		Phone:    "5511999990000",
		Amount:   "49.99",
	}).Return(&ports.InitPaymentResponse{SessionID: sessionID, ExpiresAt: expiresAt}, nil)

	w := performJSON(d.router, http.MethodPost, "/api/v1/payments/init", dto.InitPaymentRequest{
		Document: "12345678901",
		Phone:    "5511999990000",
		Amount:   "49.99",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), sessionID.String())
	// The one-time token must never leak through the HTTP response.
	assert.NotContains(t, w.Body.String(), "token")
}

func TestInitPaymentEndpoint_InsufficientFunds(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.paymentSvc.EXPECT().InitPayment(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds())

	w := performJSON(d.router, http.MethodPost, "/api/v1/payments/init", dto.InitPaymentRequest{
		Document: "12345678901",
		Phone:    "5511999990000",
		Amount:   "9999.99",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "WAL_001")
}

// --- ConfirmPayment ---

func TestConfirmPaymentEndpoint_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	sessionID := uuid.New()
	d.paymentSvc.EXPECT().ConfirmPayment(gomock.Any(), ports.ConfirmPaymentRequest{
		SessionID: sessionID,
		Token:     "042187",
	}).Return(&ports.BalanceResult{BalanceMinor: 5051, Balance: 50.51}, nil)

	w := performJSON(d.router, http.MethodPost, "/api/v1/payments/confirm", dto.ConfirmPaymentRequest{
		SessionID: sessionID.String(),
		Token6:    "042187",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "50.51")
}

func TestConfirmPaymentEndpoint_BadToken(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	w := performJSON(d.router, http.MethodPost, "/api/v1/payments/confirm", dto.ConfirmPaymentRequest{
		SessionID: uuid.New().String(),
		Token6:    "12ab56",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestConfirmPaymentEndpoint_TokenInvalid(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.paymentSvc.EXPECT().ConfirmPayment(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrTokenInvalid())

	w := performJSON(d.router, http.MethodPost, "/api/v1/payments/confirm", dto.ConfirmPaymentRequest{
		SessionID: uuid.New().String(),
		Token6:    "000000",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOK_001")
}

func TestConfirmPaymentEndpoint_AlreadyProcessed(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.paymentSvc.EXPECT().ConfirmPayment(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrAlreadyProcessed())

	w := performJSON(d.router, http.MethodPost, "/api/v1/payments/confirm", dto.ConfirmPaymentRequest{
		SessionID: uuid.New().String(),
		Token6:    "042187",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_002")
}

// --- Health ---

func TestHealthEndpoint_NoCheckers(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
