package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
	"tixpay/internal/gateway"
	"tixpay/internal/service"
)

func pendingPayment(id, requestID string) *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:               id,
		RegistrationID:   "reg-" + id,
		NetPrice:         decimal.NewFromInt(1000),
		GrossPrice:       decimal.NewFromFloat(1026.44),
		Status:           domain.StatusPending,
		PaymentRequestID: requestID,
		CreatedAt:        time.Now(),
	}
}

// ──────────────────────────────────────────────
// STATUS MAPPING
// ──────────────────────────────────────────────

func TestMapGatewayStatus_Totality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status     string
		wantStatus domain.TransactionStatus
		wantKnown  bool
	}{
		{"SUCCEEDED", domain.StatusSuccess, true},
		{"CANCELED", domain.StatusFailed, true},
		{"FAILED", domain.StatusFailed, true},
		{"VOIDED", domain.StatusFailed, true},
		{"EXPIRED", domain.StatusFailed, true},
		{"UNKNOWN", domain.StatusFailed, true},
		{"UNKNOWN_ENUM_VALUE", domain.StatusFailed, true},
		{"PENDING", domain.StatusPending, true},
		{"REQUIRES_ACTION", domain.StatusPending, true},
		{"AWAITING_CAPTURE", domain.StatusPending, true},
		{"", domain.StatusPending, true},
		{"SETTLING", "", false},
		{"succeeded", "", false},
	}

	for _, tt := range tests {
		got, known := service.MapGatewayStatus(tt.status)
		if known != tt.wantKnown {
			t.Errorf("%q: expected known=%v, got %v", tt.status, tt.wantKnown, known)
			continue
		}
		if known && got != tt.wantStatus {
			t.Errorf("%q: expected %s, got %s", tt.status, tt.wantStatus, got)
		}
	}
}

// ──────────────────────────────────────────────
// RECONCILIATION RUNS
// ──────────────────────────────────────────────

func TestReconciler_PublishesResolvedPayments(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(pendingPayment("p1", "pr-1"))
	paymentRepo.AddPayment(pendingPayment("p2", "pr-2"))
	paymentRepo.AddPayment(pendingPayment("p3", "pr-3"))

	gw := NewMockGateway()
	gw.StatusByRequestID["pr-1"] = "SUCCEEDED"
	gw.StatusByRequestID["pr-2"] = "EXPIRED"
	gw.StatusByRequestID["pr-3"] = "REQUIRES_ACTION"

	publisher := NewMockPublisher()

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, nil, 0)
	if err := reconciler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	published := publisher.Published()
	if len(published) != 2 {
		t.Fatalf("expected 2 published messages, got %d", len(published))
	}

	statuses := make(map[string]domain.TransactionStatus)
	for _, msg := range published {
		var update service.StatusUpdate
		if err := json.Unmarshal(msg.Body, &update); err != nil {
			t.Fatalf("decode message body: %v", err)
		}
		statuses[update.Payment.ID] = update.Status

		wantGroup := "payment-" + update.Payment.ID
		if msg.GroupKey != wantGroup {
			t.Errorf("expected group key %s, got %s", wantGroup, msg.GroupKey)
		}
		// The dedup key carries the group key plus a fresh nonce.
		if !strings.HasPrefix(msg.DedupKey, wantGroup+"-") || msg.DedupKey == wantGroup+"-" {
			t.Errorf("expected dedup key with nonce, got %s", msg.DedupKey)
		}
	}

	if statuses["p1"] != domain.StatusSuccess {
		t.Errorf("expected p1 SUCCESS, got %s", statuses["p1"])
	}
	if statuses["p2"] != domain.StatusFailed {
		t.Errorf("expected p2 FAILED, got %s", statuses["p2"])
	}
	if _, ok := statuses["p3"]; ok {
		t.Error("p3 is still pending and must not be published")
	}

	// The loop never writes resolution back to the store.
	if paymentRepo.UpdateStatusCallCount != 0 {
		t.Errorf("expected no store status writes, got %d", paymentRepo.UpdateStatusCallCount)
	}
}

func TestReconciler_FailureIsolation(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(pendingPayment("p1", "pr-1"))
	paymentRepo.AddPayment(pendingPayment("p2", "pr-2"))
	paymentRepo.AddPayment(pendingPayment("p3", "pr-3"))

	gw := NewMockGateway()
	gw.StatusByRequestID["pr-1"] = "SUCCEEDED"
	gw.ErrorByRequestID["pr-2"] = fmt.Errorf("%w: timeout", gateway.ErrUnavailable)
	gw.StatusByRequestID["pr-3"] = "SUCCEEDED"

	publisher := NewMockPublisher()

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, nil, 0)
	if err := reconciler.Run(context.Background()); err != nil {
		t.Fatalf("per-item failures must not fail the run: %v", err)
	}

	// Every item is still attempted.
	if gw.GetPaymentRequestCallCount != 3 {
		t.Errorf("expected 3 gateway lookups, got %d", gw.GetPaymentRequestCallCount)
	}
	if got := len(publisher.Published()); got != 2 {
		t.Errorf("expected 2 published messages, got %d", got)
	}
}

func TestReconciler_AbortsWhenStoreFetchFails(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.GetPendingError = errors.New("store unavailable")
	gw := NewMockGateway()
	publisher := NewMockPublisher()

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, nil, 0)
	if err := reconciler.Run(context.Background()); err == nil {
		t.Fatal("expected the run to fail when the pending fetch fails")
	}

	if gw.GetPaymentRequestCallCount != 0 {
		t.Errorf("expected 0 gateway calls, got %d", gw.GetPaymentRequestCallCount)
	}
	if publisher.PublishCallCount != 0 {
		t.Errorf("expected 0 publishes, got %d", publisher.PublishCallCount)
	}
}

func TestReconciler_SkipsPaymentWithoutRequestID(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(pendingPayment("p1", ""))
	paymentRepo.AddPayment(pendingPayment("p2", "pr-2"))

	gw := NewMockGateway()
	gw.StatusByRequestID["pr-2"] = "SUCCEEDED"
	publisher := NewMockPublisher()

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, nil, 0)
	if err := reconciler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// p1 cannot be reconciled; p2 still resolves.
	if gw.GetPaymentRequestCallCount != 1 {
		t.Errorf("expected 1 gateway lookup, got %d", gw.GetPaymentRequestCallCount)
	}
	published := publisher.Published()
	if len(published) != 1 || published[0].GroupKey != "payment-p2" {
		t.Errorf("expected only p2 published, got %+v", published)
	}
}

func TestReconciler_UnknownStatusIsSkippedNotMapped(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(pendingPayment("p1", "pr-1"))

	gw := NewMockGateway()
	gw.StatusByRequestID["pr-1"] = "SETTLING"
	publisher := NewMockPublisher()

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, nil, 0)
	if err := reconciler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if publisher.PublishCallCount != 0 {
		t.Errorf("unknown status must not publish, got %d publishes", publisher.PublishCallCount)
	}
}

func TestReconciler_PublishFailureDoesNotAbortRun(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(pendingPayment("p1", "pr-1"))
	paymentRepo.AddPayment(pendingPayment("p2", "pr-2"))

	gw := NewMockGateway()
	gw.StatusByRequestID["pr-1"] = "SUCCEEDED"
	gw.StatusByRequestID["pr-2"] = "SUCCEEDED"

	publisher := NewMockPublisher()
	publisher.PublishErrorByGroup["payment-p1"] = errors.New("queue unavailable")

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, nil, 0)
	if err := reconciler.Run(context.Background()); err != nil {
		t.Fatalf("publish failures must not fail the run: %v", err)
	}

	published := publisher.Published()
	if len(published) != 1 || published[0].GroupKey != "payment-p2" {
		t.Errorf("expected only p2 delivered, got %+v", published)
	}
	// p1 stays unresolved for this run; nothing marks it handled anywhere.
	if paymentRepo.UpdateStatusCallCount != 0 {
		t.Errorf("expected no store writes, got %d", paymentRepo.UpdateStatusCallCount)
	}
}

func TestReconciler_SingleFlightLock(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(pendingPayment("p1", "pr-1"))
	gw := NewMockGateway()
	gw.StatusByRequestID["pr-1"] = "SUCCEEDED"
	publisher := NewMockPublisher()

	locks := NewMockLockStore()
	locks.Held = true

	reconciler := service.NewReconcilerService(paymentRepo, gw, publisher, locks, time.Minute)
	err := reconciler.Run(context.Background())
	if !errors.Is(err, service.ErrReconcileInProgress) {
		t.Fatalf("expected ErrReconcileInProgress, got %v", err)
	}
	if paymentRepo.GetPendingCallCount != 0 {
		t.Errorf("a blocked run must not touch the store, got %d fetches", paymentRepo.GetPendingCallCount)
	}
	if locks.ReleaseCallCount != 0 {
		t.Errorf("a blocked run must not release the other run's lock, got %d releases", locks.ReleaseCallCount)
	}

	// With the lock free the run proceeds and releases afterwards.
	locks.Held = false
	if err := reconciler.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locks.ReleaseCallCount != 1 {
		t.Errorf("expected 1 release, got %d", locks.ReleaseCallCount)
	}
	if got := len(publisher.Published()); got != 1 {
		t.Errorf("expected 1 published message, got %d", got)
	}
}
