package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
	"tixpay/internal/fees"
	"tixpay/internal/gateway"
	"tixpay/internal/repository"
)

// Gateway is the interface to the payment gateway provider.
type Gateway interface {
	CreatePaymentMethod(ctx context.Context, params gateway.CreatePaymentMethodParams) (*gateway.PaymentMethod, error)
	CreatePaymentRequest(ctx context.Context, idempotencyKey string, params gateway.CreatePaymentRequestParams) (*gateway.PaymentRequest, error)
	GetPaymentRequest(ctx context.Context, id string) (*gateway.PaymentRequest, error)
}

// PaymentService drives the payment initiation flows.
type PaymentService struct {
	paymentRepo     repository.PaymentRepository
	gateway         Gateway
	callbackBaseURL string
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, gw Gateway, callbackBaseURL string) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		gateway:         gw,
		callbackBaseURL: callbackBaseURL,
	}
}

// CreatePaymentMethodRequest contains the parameters for creating a direct
// debit payment method.
type CreatePaymentMethodRequest struct {
	GivenNames       string
	Surname          string
	Email            string
	ChannelCode      domain.PaymentChannel
	SuccessReturnURL string
	FailureReturnURL string
}

// CreateDirectDebitPaymentMethod registers a one-time-use direct debit payment
// method with the gateway. No transaction record is involved at this step.
func (s *PaymentService) CreateDirectDebitPaymentMethod(ctx context.Context, req CreatePaymentMethodRequest) (*gateway.PaymentMethod, error) {
	if !domain.IsDirectDebitChannel(req.ChannelCode) {
		return nil, fees.ErrUnsupportedChannel
	}

	return s.gateway.CreatePaymentMethod(ctx, gateway.CreatePaymentMethodParams{
		ReferenceID:      uuid.New().String(),
		GivenNames:       req.GivenNames,
		Surname:          req.Surname,
		Email:            req.Email,
		ChannelCode:      req.ChannelCode,
		SuccessReturnURL: req.SuccessReturnURL,
		FailureReturnURL: req.FailureReturnURL,
	})
}

// CreateDirectDebitPaymentRequest contains the parameters for initiating a
// direct debit payment.
type CreateDirectDebitPaymentRequest struct {
	RegistrationID  string
	PaymentMethodID string
	NetPrice        decimal.Decimal
	Amount          decimal.Decimal
}

// CreateDirectDebitPayment creates a PENDING transaction record, asks the
// gateway to collect the amount against the given payment method, and attaches
// the gateway's request ID to the record.
//
// The store create always precedes the gateway call; the gateway is never
// charged for a transaction that cannot be persisted. If the gateway call
// fails, the record stays PENDING with no request reference and is skipped by
// reconciliation until cleaned up.
func (s *PaymentService) CreateDirectDebitPayment(ctx context.Context, req CreateDirectDebitPaymentRequest) (*domain.PaymentTransaction, *gateway.PaymentRequest, error) {
	if req.RegistrationID == "" {
		return nil, nil, ErrInvalidRegistrationID
	}
	if req.PaymentMethodID == "" {
		return nil, nil, ErrInvalidPaymentMethodID
	}
	if !req.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	txn, err := s.createTransaction(ctx, req.RegistrationID, req.NetPrice, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	paymentRequest, err := s.gateway.CreatePaymentRequest(ctx, uuid.New().String(), gateway.CreatePaymentRequestParams{
		ReferenceID:     txn.ID,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
		CallbackURL:     fmt.Sprintf("%s/v1/payments/%s/callback", s.callbackBaseURL, txn.ID),
	})
	if err != nil {
		return nil, nil, err
	}

	return s.attachPaymentRequest(ctx, txn, paymentRequest)
}

// CreateEWalletPaymentRequest contains the parameters for initiating an
// e-wallet payment.
type CreateEWalletPaymentRequest struct {
	RegistrationID   string
	ChannelCode      domain.PaymentChannel
	NetPrice         decimal.Decimal
	Amount           decimal.Decimal
	SuccessReturnURL string
	FailureReturnURL string
}

// CreateEWalletPayment is the e-wallet counterpart of
// CreateDirectDebitPayment. E-wallet requests are self-contained, so there is
// no payment method sub-step.
func (s *PaymentService) CreateEWalletPayment(ctx context.Context, req CreateEWalletPaymentRequest) (*domain.PaymentTransaction, *gateway.PaymentRequest, error) {
	if req.RegistrationID == "" {
		return nil, nil, ErrInvalidRegistrationID
	}
	if !domain.IsEWalletChannel(req.ChannelCode) {
		return nil, nil, fees.ErrUnsupportedChannel
	}
	if !req.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	txn, err := s.createTransaction(ctx, req.RegistrationID, req.NetPrice, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	paymentRequest, err := s.gateway.CreatePaymentRequest(ctx, uuid.New().String(), gateway.CreatePaymentRequestParams{
		ReferenceID:      txn.ID,
		Amount:           req.Amount,
		ChannelCode:      req.ChannelCode,
		SuccessReturnURL: req.SuccessReturnURL,
		FailureReturnURL: req.FailureReturnURL,
	})
	if err != nil {
		return nil, nil, err
	}

	return s.attachPaymentRequest(ctx, txn, paymentRequest)
}

// GetPayment retrieves a payment transaction by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentTransaction, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *PaymentService) createTransaction(ctx context.Context, registrationID string, netPrice, amount decimal.Decimal) (*domain.PaymentTransaction, error) {
	txn := &domain.PaymentTransaction{
		ID:             uuid.New().String(),
		RegistrationID: registrationID,
		NetPrice:       netPrice,
		GrossPrice:     amount,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.paymentRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

func (s *PaymentService) attachPaymentRequest(ctx context.Context, txn *domain.PaymentTransaction, pr *gateway.PaymentRequest) (*domain.PaymentTransaction, *gateway.PaymentRequest, error) {
	if err := s.paymentRepo.AttachPaymentRequest(ctx, txn.ID, pr.ID); err != nil {
		return nil, nil, err
	}
	txn.PaymentRequestID = pr.ID

	return txn, pr, nil
}
