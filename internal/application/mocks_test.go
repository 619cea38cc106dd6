package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/hold"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/queue"
	redisinfra "github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockInventoryRepository implements inventory.Repository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) CreateBulk(ctx context.Context, seats []*inventory.EventSeat) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockInventoryRepository) FindByEventAndIDs(ctx context.Context, eventID string, ids []string) ([]*inventory.EventSeat, error) {
	args := m.Called(ctx, eventID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.EventSeat), args.Error(1)
}

func (m *MockInventoryRepository) GetAvailableByEventID(ctx context.Context, eventID string) ([]*inventory.EventSeat, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.EventSeat), args.Error(1)
}

func (m *MockInventoryRepository) CountAvailableByEventID(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) HoldSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string, heldUntil time.Time) (int64, error) {
	args := m.Called(ctx, tx, eventID, ids, heldUntil)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) BookSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string) (int64, error) {
	args := m.Called(ctx, tx, eventID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) ReleaseHeldSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string, heldUntil time.Time) (int64, error) {
	args := m.Called(ctx, tx, eventID, ids, heldUntil)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) ReleaseSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string) (int64, error) {
	args := m.Called(ctx, tx, eventID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) ReleaseExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockHoldRepository implements hold.Repository
type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) Create(ctx context.Context, tx transaction.Tx, h *hold.Hold) error {
	args := m.Called(ctx, tx, h)
	return args.Error(0)
}

func (m *MockHoldRepository) GetByIDForUser(ctx context.Context, id, userID string) (*hold.Hold, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.Hold), args.Error(1)
}

func (m *MockHoldRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockHoldRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBookingRepository implements booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ConfirmPayment(ctx context.Context, tx transaction.Tx, id, paymentID string) (int64, error) {
	args := m.Called(ctx, tx, id, paymentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, tx transaction.Tx, id string) (int64, error) {
	args := m.Called(ctx, tx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*payment.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkRefundInitiated(ctx context.Context, tx transaction.Tx, bookingID string) (int64, error) {
	args := m.Called(ctx, tx, bookingID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

// MockStadiumRepository implements stadium.Repository
type MockStadiumRepository struct {
	mock.Mock
}

func (m *MockStadiumRepository) Create(ctx context.Context, s *stadium.Stadium) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStadiumRepository) GetByID(ctx context.Context, id string) (*stadium.Stadium, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stadium.Stadium), args.Error(1)
}

// MockPaymentVerifier implements payment.Verifier
type MockPaymentVerifier struct {
	mock.Mock
}

func (m *MockPaymentVerifier) Verify(ctx context.Context, input payment.VerificationInput) (bool, error) {
	args := m.Called(ctx, input)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher implements queue.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBookingCancelled(ctx context.Context, event queue.BookingCancelledEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryInterval time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryInterval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockSeatCache implements redisinfra.SeatCacheInterface
type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) GetAvailableCount(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatCache) SetAvailableCount(ctx context.Context, eventID string, count int, ttl time.Duration) error {
	args := m.Called(ctx, eventID, count, ttl)
	return args.Error(0)
}

func (m *MockSeatCache) Invalidate(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
