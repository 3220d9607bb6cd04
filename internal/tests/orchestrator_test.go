package tests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
	"tixpay/internal/fees"
	"tixpay/internal/gateway"
	"tixpay/internal/service"
)

// ──────────────────────────────────────────────
// PAYMENT ORCHESTRATION
// ──────────────────────────────────────────────

func TestOrchestrator_StoreCreateFailurePreventsGatewayCall(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.CreateError = errors.New("store unavailable")
	gw := NewMockGateway()

	paymentService := service.NewPaymentService(paymentRepo, gw, "https://tixpay.test")

	_, _, err := paymentService.CreateEWalletPayment(context.Background(), service.CreateEWalletPaymentRequest{
		RegistrationID: "reg-1",
		ChannelCode:    domain.ChannelGCash,
		NetPrice:       decimal.NewFromInt(1000),
		Amount:         decimal.NewFromFloat(1026.44),
	})
	if err == nil {
		t.Fatal("expected error when store create fails")
	}

	// The gateway must never be charged for a transaction that cannot be persisted.
	if gw.CreatePaymentRequestCallCount != 0 {
		t.Errorf("expected 0 gateway calls, got %d", gw.CreatePaymentRequestCallCount)
	}
}

func TestOrchestrator_GatewayFailureLeavesPendingUnattached(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	gw := NewMockGateway()
	gw.CreatePaymentRequestError = fmt.Errorf("%w: connection refused", gateway.ErrUnavailable)

	paymentService := service.NewPaymentService(paymentRepo, gw, "https://tixpay.test")

	_, _, err := paymentService.CreateEWalletPayment(context.Background(), service.CreateEWalletPaymentRequest{
		RegistrationID: "reg-1",
		ChannelCode:    domain.ChannelGCash,
		NetPrice:       decimal.NewFromInt(1000),
		Amount:         decimal.NewFromFloat(1026.44),
	})
	if !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("expected gateway error to surface, got %v", err)
	}

	// The record stays PENDING with no gateway reference; reconciliation
	// skips it until a cleanup job reaps it.
	if paymentRepo.CountPayments() != 1 {
		t.Fatalf("expected 1 stored payment, got %d", paymentRepo.CountPayments())
	}
	if paymentRepo.AttachCallCount != 0 {
		t.Errorf("expected no attach call after gateway failure, got %d", paymentRepo.AttachCallCount)
	}
	pending, _ := paymentRepo.GetPending(context.Background())
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending payment, got %d", len(pending))
	}
	stored := pending[0]
	if stored.Status != domain.StatusPending {
		t.Errorf("expected status PENDING, got %s", stored.Status)
	}
	if stored.PaymentRequestID != "" {
		t.Errorf("expected empty payment request id, got %s", stored.PaymentRequestID)
	}
}

func TestOrchestrator_SuccessAttachesPaymentRequestID(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	gw := NewMockGateway()

	paymentService := service.NewPaymentService(paymentRepo, gw, "https://tixpay.test")

	txn, paymentRequest, err := paymentService.CreateEWalletPayment(context.Background(), service.CreateEWalletPaymentRequest{
		RegistrationID:   "reg-1",
		ChannelCode:      domain.ChannelPayMaya,
		NetPrice:         decimal.NewFromInt(1000),
		Amount:           decimal.NewFromFloat(1020.57),
		SuccessReturnURL: "https://tixpay.test/ok",
		FailureReturnURL: "https://tixpay.test/fail",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.PaymentRequestID != paymentRequest.ID {
		t.Errorf("expected transaction to carry request id %s, got %s", paymentRequest.ID, txn.PaymentRequestID)
	}
	stored := paymentRepo.GetPayment(txn.ID)
	if stored == nil {
		t.Fatal("payment not stored")
	}
	if stored.PaymentRequestID != paymentRequest.ID {
		t.Errorf("expected stored request id %s, got %s", paymentRequest.ID, stored.PaymentRequestID)
	}
	if stored.Status != domain.StatusPending {
		t.Errorf("expected stored status PENDING, got %s", stored.Status)
	}
	if gw.LastCreateRequestParams.ReferenceID != txn.ID {
		t.Errorf("expected gateway reference id %s, got %s", txn.ID, gw.LastCreateRequestParams.ReferenceID)
	}
	if gw.LastIdempotencyKey == "" {
		t.Error("expected a fresh idempotency key on the gateway call")
	}
}

func TestOrchestrator_DirectDebitCallbackCarriesTransactionID(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	gw := NewMockGateway()

	paymentService := service.NewPaymentService(paymentRepo, gw, "https://tixpay.test")

	txn, _, err := paymentService.CreateDirectDebitPayment(context.Background(), service.CreateDirectDebitPaymentRequest{
		RegistrationID:  "reg-7",
		PaymentMethodID: "pm-7",
		NetPrice:        decimal.NewFromInt(1000),
		Amount:          decimal.NewFromFloat(1016.80),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gw.LastCreateRequestParams.PaymentMethodID != "pm-7" {
		t.Errorf("expected payment method id pm-7, got %s", gw.LastCreateRequestParams.PaymentMethodID)
	}
	if !strings.Contains(gw.LastCreateRequestParams.CallbackURL, txn.ID) {
		t.Errorf("expected callback url to carry transaction id %s, got %s", txn.ID, gw.LastCreateRequestParams.CallbackURL)
	}
}

func TestOrchestrator_ValidationRejectsBeforeAnyCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		run     func(s *service.PaymentService) error
		wantErr error
	}{
		{
			name: "empty registration id",
			run: func(s *service.PaymentService) error {
				_, _, err := s.CreateEWalletPayment(context.Background(), service.CreateEWalletPaymentRequest{
					ChannelCode: domain.ChannelGCash,
					Amount:      decimal.NewFromInt(100),
				})
				return err
			},
			wantErr: service.ErrInvalidRegistrationID,
		},
		{
			name: "direct debit channel on e-wallet flow",
			run: func(s *service.PaymentService) error {
				_, _, err := s.CreateEWalletPayment(context.Background(), service.CreateEWalletPaymentRequest{
					RegistrationID: "reg-1",
					ChannelCode:    domain.ChannelBPI,
					Amount:         decimal.NewFromInt(100),
				})
				return err
			},
			wantErr: fees.ErrUnsupportedChannel,
		},
		{
			name: "missing payment method id",
			run: func(s *service.PaymentService) error {
				_, _, err := s.CreateDirectDebitPayment(context.Background(), service.CreateDirectDebitPaymentRequest{
					RegistrationID: "reg-1",
					Amount:         decimal.NewFromInt(100),
				})
				return err
			},
			wantErr: service.ErrInvalidPaymentMethodID,
		},
		{
			name: "non-positive amount",
			run: func(s *service.PaymentService) error {
				_, _, err := s.CreateDirectDebitPayment(context.Background(), service.CreateDirectDebitPaymentRequest{
					RegistrationID:  "reg-1",
					PaymentMethodID: "pm-1",
					Amount:          decimal.Zero,
				})
				return err
			},
			wantErr: service.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentRepo := NewMockPaymentRepository()
			gw := NewMockGateway()
			paymentService := service.NewPaymentService(paymentRepo, gw, "https://tixpay.test")

			err := tt.run(paymentService)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if paymentRepo.CreateCallCount != 0 {
				t.Errorf("expected no store create, got %d", paymentRepo.CreateCallCount)
			}
			if gw.CreatePaymentRequestCallCount != 0 {
				t.Errorf("expected no gateway call, got %d", gw.CreatePaymentRequestCallCount)
			}
		})
	}
}

func TestOrchestrator_CreateDirectDebitPaymentMethod(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	gw := NewMockGateway()
	paymentService := service.NewPaymentService(paymentRepo, gw, "https://tixpay.test")

	_, err := paymentService.CreateDirectDebitPaymentMethod(context.Background(), service.CreatePaymentMethodRequest{
		GivenNames:  "Juan",
		Surname:     "Dela Cruz",
		Email:       "juan@example.com",
		ChannelCode: domain.ChannelGCash, // e-wallet channel is invalid here
	})
	if !errors.Is(err, fees.ErrUnsupportedChannel) {
		t.Fatalf("expected ErrUnsupportedChannel, got %v", err)
	}
	if gw.CreatePaymentMethodCallCount != 0 {
		t.Errorf("expected no gateway call, got %d", gw.CreatePaymentMethodCallCount)
	}

	method, err := paymentService.CreateDirectDebitPaymentMethod(context.Background(), service.CreatePaymentMethodRequest{
		GivenNames:  "Juan",
		Surname:     "Dela Cruz",
		Email:       "juan@example.com",
		ChannelCode: domain.ChannelBPI,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method.ID == "" || method.ActionURL == "" {
		t.Errorf("expected a populated payment method, got %+v", method)
	}
	if gw.LastCreateMethodParams.ReferenceID == "" {
		t.Error("expected a generated customer reference id")
	}
}
