package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
	"tixpay/internal/service"
)

// PaymentHandler handles HTTP requests for payment initiation.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentMethodRequest is the HTTP request body for creating a direct
// debit payment method.
type CreatePaymentMethodRequest struct {
	GivenNames       string `json:"given_names"`
	Surname          string `json:"surname"`
	Email            string `json:"email"`
	ChannelCode      string `json:"channel_code"`
	SuccessReturnURL string `json:"success_return_url"`
	FailureReturnURL string `json:"failure_return_url"`
}

// PaymentMethodResponse is the HTTP response for payment method creation.
type PaymentMethodResponse struct {
	PaymentMethodID string    `json:"payment_method_id"`
	CustomerID      string    `json:"customer_id"`
	ReferenceID     string    `json:"reference_id"`
	AllowPaymentURL string    `json:"allow_payment_url"`
	CreateDate      time.Time `json:"create_date"`
}

// CreateDirectDebitPaymentMethod handles POST /v1/direct_debit/payment_method
func (h *PaymentHandler) CreateDirectDebitPaymentMethod(c *gin.Context) {
	var req CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.GivenNames == "" || req.Surname == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "given_names, surname and email are required"})
		return
	}

	method, err := h.paymentService.CreateDirectDebitPaymentMethod(c.Request.Context(), service.CreatePaymentMethodRequest{
		GivenNames:       req.GivenNames,
		Surname:          req.Surname,
		Email:            req.Email,
		ChannelCode:      domain.PaymentChannel(req.ChannelCode),
		SuccessReturnURL: req.SuccessReturnURL,
		FailureReturnURL: req.FailureReturnURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, PaymentMethodResponse{
		PaymentMethodID: method.ID,
		CustomerID:      method.CustomerID,
		ReferenceID:     method.ReferenceID,
		AllowPaymentURL: method.ActionURL,
		CreateDate:      method.Created,
	})
}

// CreateDirectDebitPaymentRequest is the HTTP request body for initiating a
// direct debit payment.
type CreateDirectDebitPaymentRequest struct {
	RegistrationID  string          `json:"registration_id"`
	PaymentMethodID string          `json:"payment_method_id"`
	NetPrice        decimal.Decimal `json:"net_price"`
	Amount          decimal.Decimal `json:"amount"`
}

// PaymentRequestResponse is the HTTP response for payment request creation.
type PaymentRequestResponse struct {
	PaymentID        string    `json:"payment_id"`
	PaymentRequestID string    `json:"payment_request_id"`
	ReferenceID      string    `json:"reference_id"`
	PaymentURL       string    `json:"payment_url,omitempty"`
	Status           string    `json:"status"`
	CreateDate       time.Time `json:"create_date"`
}

// CreateDirectDebitPaymentRequest handles POST /v1/direct_debit/payment_request
func (h *PaymentHandler) CreateDirectDebitPaymentRequest(c *gin.Context) {
	var req CreateDirectDebitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	txn, paymentRequest, err := h.paymentService.CreateDirectDebitPayment(c.Request.Context(), service.CreateDirectDebitPaymentRequest{
		RegistrationID:  req.RegistrationID,
		PaymentMethodID: req.PaymentMethodID,
		NetPrice:        req.NetPrice,
		Amount:          req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, PaymentRequestResponse{
		PaymentID:        txn.ID,
		PaymentRequestID: paymentRequest.ID,
		ReferenceID:      paymentRequest.ReferenceID,
		PaymentURL:       paymentRequest.ActionURL,
		Status:           string(txn.Status),
		CreateDate:       paymentRequest.Created,
	})
}

// CreateEWalletPaymentRequest is the HTTP request body for initiating an
// e-wallet payment.
type CreateEWalletPaymentRequest struct {
	RegistrationID   string          `json:"registration_id"`
	ChannelCode      string          `json:"channel_code"`
	NetPrice         decimal.Decimal `json:"net_price"`
	Amount           decimal.Decimal `json:"amount"`
	SuccessReturnURL string          `json:"success_return_url"`
	FailureReturnURL string          `json:"failure_return_url"`
}

// CreateEWalletPaymentRequest handles POST /v1/e_wallet/payment_request
func (h *PaymentHandler) CreateEWalletPaymentRequest(c *gin.Context) {
	var req CreateEWalletPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	txn, paymentRequest, err := h.paymentService.CreateEWalletPayment(c.Request.Context(), service.CreateEWalletPaymentRequest{
		RegistrationID:   req.RegistrationID,
		ChannelCode:      domain.PaymentChannel(req.ChannelCode),
		NetPrice:         req.NetPrice,
		Amount:           req.Amount,
		SuccessReturnURL: req.SuccessReturnURL,
		FailureReturnURL: req.FailureReturnURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, PaymentRequestResponse{
		PaymentID:        txn.ID,
		PaymentRequestID: paymentRequest.ID,
		ReferenceID:      paymentRequest.ReferenceID,
		PaymentURL:       paymentRequest.ActionURL,
		Status:           string(txn.Status),
		CreateDate:       paymentRequest.Created,
	})
}

// PaymentResponse is the HTTP response for payment lookups.
type PaymentResponse struct {
	ID               string          `json:"id"`
	RegistrationID   string          `json:"registration_id"`
	NetPrice         decimal.Decimal `json:"net_price"`
	GrossPrice       decimal.Decimal `json:"gross_price"`
	Status           string          `json:"status"`
	PaymentRequestID string          `json:"payment_request_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentResponse{
		ID:               payment.ID,
		RegistrationID:   payment.RegistrationID,
		NetPrice:         payment.NetPrice,
		GrossPrice:       payment.GrossPrice,
		Status:           string(payment.Status),
		PaymentRequestID: payment.PaymentRequestID,
		CreatedAt:        payment.CreatedAt,
	})
}
