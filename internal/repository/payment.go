package repository

import (
	"context"

	"tixpay/internal/domain"
)

// PaymentRepository defines the persistence operations for payment transactions.
type PaymentRepository interface {
	// Create persists a new payment transaction.
	Create(ctx context.Context, payment *domain.PaymentTransaction) error

	// GetByID retrieves a payment transaction by ID.
	GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error)

	// GetPending retrieves all payment transactions still in PENDING status.
	GetPending(ctx context.Context) ([]*domain.PaymentTransaction, error)

	// AttachPaymentRequest records the gateway-assigned payment request ID on
	// an existing transaction.
	AttachPaymentRequest(ctx context.Context, id, paymentRequestID string) error

	// UpdateStatus updates the status of a payment transaction.
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error
}
