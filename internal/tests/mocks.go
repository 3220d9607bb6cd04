package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tixpay/internal/domain"
	"tixpay/internal/gateway"
	"tixpay/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.PaymentTransaction
	order    []string

	// Counters for verification
	CreateCallCount       int32
	GetPendingCallCount   int32
	AttachCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	GetPendingError   error
	AttachError       error
	UpdateStatusError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.PaymentTransaction),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.PaymentTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	m.order = append(m.order, payment.ID)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.PaymentTransaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	m.order = append(m.order, payment.ID)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetPending(ctx context.Context) ([]*domain.PaymentTransaction, error) {
	atomic.AddInt32(&m.GetPendingCallCount, 1)
	if m.GetPendingError != nil {
		return nil, m.GetPendingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PaymentTransaction
	for _, id := range m.order {
		if p := m.payments[id]; p.Status == domain.StatusPending {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) AttachPaymentRequest(ctx context.Context, id, paymentRequestID string) error {
	atomic.AddInt32(&m.AttachCallCount, 1)
	if m.AttachError != nil {
		return m.AttachError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.PaymentRequestID = paymentRequestID
	return nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.PaymentTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock implementation of the payment gateway.
type MockGateway struct {
	mu sync.Mutex

	// Counters for verification
	CreatePaymentMethodCallCount  int32
	CreatePaymentRequestCallCount int32
	GetPaymentRequestCallCount    int32

	// Error injection
	CreatePaymentMethodError  error
	CreatePaymentRequestError error

	// Per-request-ID behavior for GetPaymentRequest.
	StatusByRequestID map[string]string
	ErrorByRequestID  map[string]error

	// Captured inputs for assertions
	LastIdempotencyKey       string
	LastCreateRequestParams  gateway.CreatePaymentRequestParams
	LastCreateMethodParams   gateway.CreatePaymentMethodParams
	RequestedPaymentRequests []string
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		StatusByRequestID: make(map[string]string),
		ErrorByRequestID:  make(map[string]error),
	}
}

func (m *MockGateway) CreatePaymentMethod(ctx context.Context, params gateway.CreatePaymentMethodParams) (*gateway.PaymentMethod, error) {
	atomic.AddInt32(&m.CreatePaymentMethodCallCount, 1)
	if m.CreatePaymentMethodError != nil {
		return nil, m.CreatePaymentMethodError
	}
	m.mu.Lock()
	m.LastCreateMethodParams = params
	m.mu.Unlock()
	return &gateway.PaymentMethod{
		ID:          "pm-mock",
		CustomerID:  "cust-mock",
		ReferenceID: params.ReferenceID,
		ActionURL:   "https://gateway.test/authorize",
		Created:     time.Now(),
	}, nil
}

func (m *MockGateway) CreatePaymentRequest(ctx context.Context, idempotencyKey string, params gateway.CreatePaymentRequestParams) (*gateway.PaymentRequest, error) {
	atomic.AddInt32(&m.CreatePaymentRequestCallCount, 1)
	if m.CreatePaymentRequestError != nil {
		return nil, m.CreatePaymentRequestError
	}
	m.mu.Lock()
	m.LastIdempotencyKey = idempotencyKey
	m.LastCreateRequestParams = params
	m.mu.Unlock()
	return &gateway.PaymentRequest{
		ID:          "pr-mock",
		ReferenceID: params.ReferenceID,
		Status:      "PENDING",
		ActionURL:   "https://gateway.test/pay",
		Created:     time.Now(),
	}, nil
}

func (m *MockGateway) GetPaymentRequest(ctx context.Context, id string) (*gateway.PaymentRequest, error) {
	atomic.AddInt32(&m.GetPaymentRequestCallCount, 1)
	m.mu.Lock()
	m.RequestedPaymentRequests = append(m.RequestedPaymentRequests, id)
	m.mu.Unlock()
	if err := m.ErrorByRequestID[id]; err != nil {
		return nil, err
	}
	return &gateway.PaymentRequest{
		ID:     id,
		Status: m.StatusByRequestID[id],
	}, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION PUBLISHER
// ──────────────────────────────────────────────

// PublishedMessage records one publish call for assertions.
type PublishedMessage struct {
	Body     []byte
	GroupKey string
	DedupKey string
}

// MockPublisher is a mock implementation of queue.Publisher.
type MockPublisher struct {
	mu        sync.Mutex
	published []PublishedMessage

	// Counters for verification
	PublishCallCount int32

	// Error injection
	PublishError        error
	PublishErrorByGroup map[string]error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishErrorByGroup: make(map[string]error),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, body []byte, groupKey, dedupKey string) (string, error) {
	atomic.AddInt32(&m.PublishCallCount, 1)
	if m.PublishError != nil {
		return "", m.PublishError
	}
	if err := m.PublishErrorByGroup[groupKey]; err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedMessage{Body: body, GroupKey: groupKey, DedupKey: dedupKey})
	return "msg-mock", nil
}

// Published returns the published messages for test assertions.
func (m *MockPublisher) Published() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.published...)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the reconcile lock.
type MockLockStore struct {
	// Held simulates another run holding the lock.
	Held bool

	// Error injection
	AcquireError error

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{}
}

func (m *MockLockStore) AcquireReconcileLock(ctx context.Context, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	return !m.Held, nil
}

func (m *MockLockStore) ReleaseReconcileLock(ctx context.Context) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	return nil
}
