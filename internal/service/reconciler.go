package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tixpay/internal/domain"
	"tixpay/internal/queue"
	internalRedis "tixpay/internal/redis"
	"tixpay/internal/repository"
)

// Gateway-native payment request statuses, grouped by how they resolve.
var (
	successStatuses = map[string]struct{}{
		"SUCCEEDED": {},
	}

	failureStatuses = map[string]struct{}{
		"CANCELED":           {},
		"FAILED":             {},
		"VOIDED":             {},
		"EXPIRED":            {},
		"UNKNOWN":            {},
		"UNKNOWN_ENUM_VALUE": {},
	}

	pendingStatuses = map[string]struct{}{
		"PENDING":          {},
		"REQUIRES_ACTION":  {},
		"AWAITING_CAPTURE": {},
	}
)

// MapGatewayStatus maps a gateway-native status string onto the internal
// tri-state. An empty status counts as pending. The second return is false for
// strings outside every known set; callers must treat those as errors rather
// than silently mapping them.
func MapGatewayStatus(status string) (domain.TransactionStatus, bool) {
	if status == "" {
		return domain.StatusPending, true
	}
	if _, ok := pendingStatuses[status]; ok {
		return domain.StatusPending, true
	}
	if _, ok := successStatuses[status]; ok {
		return domain.StatusSuccess, true
	}
	if _, ok := failureStatuses[status]; ok {
		return domain.StatusFailed, true
	}

	return "", false
}

// StatusUpdate is the queue message body for one resolved payment.
type StatusUpdate struct {
	Payment *domain.PaymentTransaction `json:"payment"`
	Status  domain.TransactionStatus   `json:"status"`
}

// ReconcilerService polls pending payment transactions against the gateway and
// publishes a status update for each one that has resolved. The resolved
// status is not written back to the store; the downstream queue consumer owns
// that write, and the loop re-derives resolution from the gateway every run.
type ReconcilerService struct {
	paymentRepo repository.PaymentRepository
	gateway     Gateway
	publisher   queue.Publisher
	locks       internalRedis.LockStoreInterface
	lockTTL     time.Duration
}

// NewReconcilerService creates a new ReconcilerService. locks may be nil, in
// which case overlapping runs are not guarded against.
func NewReconcilerService(paymentRepo repository.PaymentRepository, gw Gateway, publisher queue.Publisher, locks internalRedis.LockStoreInterface, lockTTL time.Duration) *ReconcilerService {
	return &ReconcilerService{
		paymentRepo: paymentRepo,
		gateway:     gw,
		publisher:   publisher,
		locks:       locks,
		lockTTL:     lockTTL,
	}
}

// Run executes one reconciliation pass. A failure to fetch the pending set
// aborts the whole run; every other failure is isolated to its transaction and
// retried on the next run.
func (s *ReconcilerService) Run(ctx context.Context) error {
	if s.locks != nil {
		acquired, err := s.locks.AcquireReconcileLock(ctx, s.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire reconcile lock: %w", err)
		}
		if !acquired {
			return ErrReconcileInProgress
		}
		defer func() {
			if err := s.locks.ReleaseReconcileLock(ctx); err != nil {
				log.Printf("release reconcile lock: %v", err)
			}
		}()
	}

	pending, err := s.paymentRepo.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("fetch pending payments: %w", err)
	}

	for _, payment := range pending {
		s.reconcile(ctx, payment)
	}

	return nil
}

// reconcile handles a single pending transaction. It never returns an error;
// per-item failures are logged and the item is retried on the next run.
func (s *ReconcilerService) reconcile(ctx context.Context, payment *domain.PaymentTransaction) {
	if payment.PaymentRequestID == "" {
		log.Printf("payment %s has no payment request id", payment.ID)
		return
	}

	paymentRequest, err := s.gateway.GetPaymentRequest(ctx, payment.PaymentRequestID)
	if err != nil {
		log.Printf("payment %s: fetch payment request %s: %v", payment.ID, payment.PaymentRequestID, err)
		return
	}

	status, known := MapGatewayStatus(paymentRequest.Status)
	if !known {
		log.Printf("payment %s has an unknown gateway status: %q", payment.ID, paymentRequest.Status)
		return
	}
	if status == domain.StatusPending {
		return
	}

	if err := s.publish(ctx, payment, status); err != nil {
		log.Printf("payment %s: publish status update: %v", payment.ID, err)
		return
	}

	log.Printf("payment %s resolved to %s", payment.ID, status)
}

func (s *ReconcilerService) publish(ctx context.Context, payment *domain.PaymentTransaction, status domain.TransactionStatus) error {
	body, err := json.Marshal(StatusUpdate{Payment: payment, Status: status})
	if err != nil {
		return err
	}

	// The dedup key carries a fresh nonce so a retried publish of the same
	// logical event on a later run is delivered again, not coalesced.
	groupKey := "payment-" + payment.ID
	dedupKey := groupKey + "-" + uuid.New().String()

	_, err = s.publisher.Publish(ctx, body, groupKey, dedupKey)
	return err
}
