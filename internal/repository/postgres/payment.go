package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tixpay/internal/domain"
	"tixpay/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment transaction.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (id, registration_id, net_price, gross_price, status, payment_request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.RegistrationID,
		payment.NetPrice,
		payment.GrossPrice,
		payment.Status,
		payment.PaymentRequestID,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment transaction by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error) {
	query := `
		SELECT id, registration_id, net_price, gross_price, status, COALESCE(payment_request_id, ''), created_at
		FROM payment_transactions WHERE id = $1
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// GetPending retrieves all payment transactions still in PENDING status.
func (r *PaymentRepository) GetPending(ctx context.Context) ([]*domain.PaymentTransaction, error) {
	query := `
		SELECT id, registration_id, net_price, gross_price, status, COALESCE(payment_request_id, ''), created_at
		FROM payment_transactions
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.PaymentTransaction
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// AttachPaymentRequest records the gateway-assigned payment request ID.
func (r *PaymentRepository) AttachPaymentRequest(ctx context.Context, id, paymentRequestID string) error {
	query := `UPDATE payment_transactions SET payment_request_id = $1 WHERE id = $2`

	return r.exec(ctx, query, paymentRequestID, id)
}

// UpdateStatus updates the status of a payment transaction.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	query := `UPDATE payment_transactions SET status = $1 WHERE id = $2`

	return r.exec(ctx, query, status, id)
}

func (r *PaymentRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (*domain.PaymentTransaction, error) {
	var payment domain.PaymentTransaction
	err := s.Scan(
		&payment.ID,
		&payment.RegistrationID,
		&payment.NetPrice,
		&payment.GrossPrice,
		&payment.Status,
		&payment.PaymentRequestID,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}
