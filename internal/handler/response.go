package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tixpay/internal/fees"
	"tixpay/internal/gateway"
	"tixpay/internal/repository"
	"tixpay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository/gateway errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, fees.ErrInvalidPaymentMethod),
		errors.Is(err, fees.ErrUnsupportedChannel),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidRegistrationID),
		errors.Is(err, service.ErrInvalidPaymentMethodID),
		errors.Is(err, service.ErrInvalidPaymentID):
		return http.StatusBadRequest

	// Gateway business-level rejections carry the gateway's message.
	case errors.Is(err, gateway.ErrRejected):
		return http.StatusBadRequest

	// Gateway transport failures
	case errors.Is(err, gateway.ErrUnavailable):
		return http.StatusBadGateway

	// Conflict errors
	case errors.Is(err, service.ErrReconcileInProgress):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
