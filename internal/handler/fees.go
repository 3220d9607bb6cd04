package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
	"tixpay/internal/fees"
	"tixpay/internal/service"
)

// FeesHandler handles HTTP requests for transaction fee quotes.
type FeesHandler struct {
	feeService *service.FeeService
}

// NewFeesHandler creates a new FeesHandler.
func NewFeesHandler(feeService *service.FeeService) *FeesHandler {
	return &FeesHandler{feeService: feeService}
}

// TransactionFeesRequest is the HTTP request body for a fee quote.
type TransactionFeesRequest struct {
	TicketPrice    decimal.Decimal  `json:"ticket_price"`
	PaymentMethod  string           `json:"payment_method"`
	PaymentChannel string           `json:"payment_channel"`
	PlatformFee    *decimal.Decimal `json:"platform_fee"`
}

// TransactionFeesResponse is the HTTP response for a fee quote.
type TransactionFeesResponse struct {
	TicketPrice    decimal.Decimal  `json:"ticket_price"`
	TransactionFee decimal.Decimal  `json:"transaction_fee"`
	PlatformFee    *decimal.Decimal `json:"platform_fee,omitempty"`
	TotalPrice     decimal.Decimal  `json:"total_price"`
}

// GetTransactionFees handles POST /v1/transactions/fees
func (h *FeesHandler) GetTransactionFees(c *gin.Context) {
	var req TransactionFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	params := fees.QuoteParams{
		TicketPrice: req.TicketPrice,
		Method:      domain.PaymentMethod(req.PaymentMethod),
		Channel:     domain.PaymentChannel(req.PaymentChannel),
	}
	if req.PlatformFee != nil {
		params.PlatformPct = *req.PlatformFee
	}

	quote, err := h.feeService.GetQuote(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := TransactionFeesResponse{
		TicketPrice:    quote.TicketPrice,
		TransactionFee: quote.Fee,
		TotalPrice:     quote.GrossPrice,
	}
	// The platform fee key is omitted entirely when the organizer takes no cut.
	if quote.PlatformFee.IsPositive() {
		platformFee := quote.PlatformFee
		resp.PlatformFee = &platformFee
	}

	respondJSON(c, http.StatusOK, resp)
}
