package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the current status of a payment transaction.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// PaymentMethod represents how the payer is charged.
type PaymentMethod string

const (
	MethodDirectDebit PaymentMethod = "DIRECT_DEBIT"
	MethodEWallet     PaymentMethod = "E_WALLET"
)

// PaymentChannel is a gateway channel code, consistent with the payment method.
type PaymentChannel string

// Direct debit channels.
const (
	ChannelBPI       PaymentChannel = "BPI"
	ChannelUBP       PaymentChannel = "UBP"
	ChannelRCBC      PaymentChannel = "RCBC"
	ChannelChinabank PaymentChannel = "CHINABANK"
)

// E-wallet channels.
const (
	ChannelGCash   PaymentChannel = "GCASH"
	ChannelPayMaya PaymentChannel = "PAYMAYA"
)

// IsDirectDebitChannel reports whether c is a known direct debit channel.
func IsDirectDebitChannel(c PaymentChannel) bool {
	switch c {
	case ChannelBPI, ChannelUBP, ChannelRCBC, ChannelChinabank:
		return true
	}
	return false
}

// IsEWalletChannel reports whether c is a known e-wallet channel.
func IsEWalletChannel(c PaymentChannel) bool {
	switch c {
	case ChannelGCash, ChannelPayMaya:
		return true
	}
	return false
}

// PaymentTransaction records one attempt to collect money for one registration.
// Status starts at PENDING and only ever moves to SUCCESS or FAILED.
// PaymentRequestID is empty until the gateway accepts the request.
type PaymentTransaction struct {
	ID               string            `json:"id"`
	RegistrationID   string            `json:"registration_id"`
	NetPrice         decimal.Decimal   `json:"net_price"`
	GrossPrice       decimal.Decimal   `json:"gross_price"`
	Status           TransactionStatus `json:"status"`
	PaymentRequestID string            `json:"payment_request_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// FeeQuote is a transient fee breakdown for one ticket price. PlatformFee is
// zero when the organizer takes no platform cut.
type FeeQuote struct {
	TicketPrice decimal.Decimal
	GrossPrice  decimal.Decimal
	Fee         decimal.Decimal
	PlatformFee decimal.Decimal
}
