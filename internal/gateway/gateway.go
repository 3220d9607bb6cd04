// Package gateway talks to the third-party payment gateway's REST API.
package gateway

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
)

var (
	// ErrRejected is returned when the gateway rejects the request at the
	// business level (bad parameters, unsupported channel, ...). The gateway's
	// own message is wrapped alongside.
	ErrRejected = errors.New("gateway rejected request")

	// ErrUnavailable is returned on transport failures and gateway 5xx
	// responses.
	ErrUnavailable = errors.New("gateway unavailable")
)

// PaymentMethod is a gateway-side payment method record.
type PaymentMethod struct {
	ID          string
	CustomerID  string
	ReferenceID string

	// ActionURL is where the payer is sent to authorize the method.
	ActionURL string
	Created   time.Time
}

// PaymentRequest is a gateway-side payment request record. Status carries the
// gateway's native status vocabulary, not this service's tri-state.
type PaymentRequest struct {
	ID          string
	ReferenceID string
	Status      string
	ActionURL   string
	Created     time.Time
}

// CreatePaymentMethodParams describes a direct debit payment method to create.
type CreatePaymentMethodParams struct {
	ReferenceID      string
	GivenNames       string
	Surname          string
	Email            string
	ChannelCode      domain.PaymentChannel
	SuccessReturnURL string
	FailureReturnURL string
}

// CreatePaymentRequestParams describes a payment request to create. A non-empty
// PaymentMethodID selects the direct debit shape; otherwise the e-wallet shape
// with ChannelCode and return URLs is sent.
type CreatePaymentRequestParams struct {
	ReferenceID string
	Amount      decimal.Decimal

	// Direct debit.
	PaymentMethodID string
	CallbackURL     string

	// E-wallet.
	ChannelCode      domain.PaymentChannel
	SuccessReturnURL string
	FailureReturnURL string
}
