package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/hold"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/queue"
)

type bookingTestDeps struct {
	txManager     *MockTxManager
	tx            *MockTx
	bookingRepo   *MockBookingRepository
	holdRepo      *MockHoldRepository
	inventoryRepo *MockInventoryRepository
	paymentRepo   *MockPaymentRepository
	cache         *MockSeatCache
	publisher     *MockEventPublisher
	service       *BookingService
}

func newBookingTestDeps() *bookingTestDeps {
	txm := new(MockTxManager)
	tx := new(MockTx)
	br := new(MockBookingRepository)
	hr := new(MockHoldRepository)
	ir := new(MockInventoryRepository)
	pr := new(MockPaymentRepository)
	cache := new(MockSeatCache)
	pub := new(MockEventPublisher)

	service := NewBookingService(txm, br, hr, ir, pr, cache, pub, nil)

	return &bookingTestDeps{
		txManager: txm, tx: tx,
		bookingRepo: br, holdRepo: hr, inventoryRepo: ir, paymentRepo: pr,
		cache: cache, publisher: pub,
		service: service,
	}
}

func activeHold(id, eventID, userID string, seatIDs []string) *hold.Hold {
	return &hold.Hold{
		ID: id, EventID: eventID, UserID: userID,
		SeatIDs:   seatIDs,
		HeldUntil: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now().Add(-5 * time.Minute),
	}
}

func heldSeatAt(id, eventID string, price int, heldUntil time.Time) *inventory.EventSeat {
	return &inventory.EventSeat{
		ID: id, EventID: eventID,
		Status: inventory.StatusHeld, CurrentPrice: price,
		HeldUntil: &heldUntil, Version: 2,
	}
}

func TestBookingService_CommitHold_Success(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID: "event-1",
		HoldID:  "hold-1",
		UserID:  "user-1",
		SeatIDs: []string{"seat-1", "seat-2"},
	}

	until := time.Now().Add(10 * time.Minute)
	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").
		Return(activeHold("hold-1", "event-1", "user-1", input.SeatIDs), nil)
	deps.inventoryRepo.On("FindByEventAndIDs", ctx, "event-1", input.SeatIDs).Return(
		[]*inventory.EventSeat{
			heldSeatAt("seat-1", "event-1", 1500, until),
			heldSeatAt("seat-2", "event-1", 1500, until),
		}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.bookingRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*booking.Booking")).Return(nil)
	deps.inventoryRepo.On("BookSeats", ctx, deps.tx, "event-1", input.SeatIDs).Return(int64(2), nil)
	deps.holdRepo.On("Delete", ctx, deps.tx, "hold-1").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.tx.On("Rollback").Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, booking.StatusPendingPayment, result.Status)
	assert.Equal(t, 3000, result.TotalAmount)
	assert.Len(t, result.BookedSeats, 2)
	// 支払い待ちの予約では確定イベントは発行されない
	deps.publisher.AssertNotCalled(t, "PublishBookingConfirmed", mock.Anything, mock.Anything)
}

func TestBookingService_CommitHold_ConfirmDirectly(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID:         "event-1",
		HoldID:          "hold-1",
		UserID:          "user-1",
		SeatIDs:         []string{"seat-1"},
		ConfirmDirectly: true,
	}

	until := time.Now().Add(10 * time.Minute)
	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").
		Return(activeHold("hold-1", "event-1", "user-1", input.SeatIDs), nil)
	deps.inventoryRepo.On("FindByEventAndIDs", ctx, "event-1", input.SeatIDs).Return(
		[]*inventory.EventSeat{heldSeatAt("seat-1", "event-1", 4500, until)}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.bookingRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*booking.Booking")).Return(nil)
	deps.inventoryRepo.On("BookSeats", ctx, deps.tx, "event-1", input.SeatIDs).Return(int64(1), nil)
	deps.holdRepo.On("Delete", ctx, deps.tx, "hold-1").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.tx.On("Rollback").Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)
	deps.publisher.On("PublishBookingConfirmed", ctx, mock.AnythingOfType("queue.BookingConfirmedEvent")).Return(nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, booking.StatusConfirmed, result.Status)
	deps.publisher.AssertCalled(t, "PublishBookingConfirmed", ctx, mock.AnythingOfType("queue.BookingConfirmedEvent"))
}

func TestBookingService_CommitHold_ExpiredHold(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID: "event-1",
		HoldID:  "hold-1",
		UserID:  "user-1",
		SeatIDs: []string{"seat-1"},
	}

	expired := activeHold("hold-1", "event-1", "user-1", input.SeatIDs)
	expired.HeldUntil = time.Now().Add(-time.Minute)
	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").Return(expired, nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, FailureNotFound, result.FailureKind)
	assert.Contains(t, result.Message, "hold expired or not found")
	// 予約は作成されない
	deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
	deps.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CommitHold_SeatsNotInHold(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID: "event-1",
		HoldID:  "hold-1",
		UserID:  "user-1",
		// hold には seat-1 しか含まれていない
		SeatIDs: []string{"seat-1", "seat-other"},
	}

	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").
		Return(activeHold("hold-1", "event-1", "user-1", []string{"seat-1"}), nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, FailureInvalidRequest, result.FailureKind)
	deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestBookingService_CommitHold_SeatsNoLongerHeld(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID: "event-1",
		HoldID:  "hold-1",
		UserID:  "user-1",
		SeatIDs: []string{"seat-1"},
	}

	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").
		Return(activeHold("hold-1", "event-1", "user-1", input.SeatIDs), nil)
	// スイーパーに回収され available に戻っていた
	deps.inventoryRepo.On("FindByEventAndIDs", ctx, "event-1", input.SeatIDs).Return(
		[]*inventory.EventSeat{availableSeat("seat-1", "event-1", 1500)}, nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, FailureConflict, result.FailureKind)
	assert.Contains(t, result.Message, "no longer held")
}

func TestBookingService_CommitHold_AtomicRollbackOnRace(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID: "event-1",
		HoldID:  "hold-1",
		UserID:  "user-1",
		SeatIDs: []string{"seat-1", "seat-2"},
	}

	until := time.Now().Add(10 * time.Minute)
	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").
		Return(activeHold("hold-1", "event-1", "user-1", input.SeatIDs), nil)
	deps.inventoryRepo.On("FindByEventAndIDs", ctx, "event-1", input.SeatIDs).Return(
		[]*inventory.EventSeat{
			heldSeatAt("seat-1", "event-1", 1500, until),
			heldSeatAt("seat-2", "event-1", 1500, until),
		}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.bookingRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*booking.Booking")).Return(nil)
	// 取得検証とトランザクションの間にレースが発生し、1席しか遷移できなかった
	deps.inventoryRepo.On("BookSeats", ctx, deps.tx, "event-1", input.SeatIDs).Return(int64(1), nil)
	deps.tx.On("Rollback").Return(nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, FailureConflict, result.FailureKind)
	// 挿入済みの予約ごとロールバックされ、部分確定は残らない
	deps.tx.AssertNotCalled(t, "Commit")
	deps.tx.AssertCalled(t, "Rollback")
	deps.holdRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CommitHold_PriceLockedAtCommit(t *testing.T) {
	deps := newBookingTestDeps()
	ctx := context.Background()

	input := CommitHoldInput{
		EventID: "event-1",
		HoldID:  "hold-1",
		UserID:  "user-1",
		SeatIDs: []string{"seat-1", "seat-2"},
	}

	// ホールド時点では1500だったが、確定時点の現在価格は2000
	until := time.Now().Add(10 * time.Minute)
	deps.holdRepo.On("GetByIDForUser", ctx, "hold-1", "user-1").
		Return(activeHold("hold-1", "event-1", "user-1", input.SeatIDs), nil)
	deps.inventoryRepo.On("FindByEventAndIDs", ctx, "event-1", input.SeatIDs).Return(
		[]*inventory.EventSeat{
			heldSeatAt("seat-1", "event-1", 2000, until),
			heldSeatAt("seat-2", "event-1", 2000, until),
		}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)

	var created *booking.Booking
	deps.bookingRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*booking.Booking")).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*booking.Booking)
		}).Return(nil)
	deps.inventoryRepo.On("BookSeats", ctx, deps.tx, "event-1", input.SeatIDs).Return(int64(2), nil)
	deps.holdRepo.On("Delete", ctx, deps.tx, "hold-1").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.tx.On("Rollback").Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	result, err := deps.service.CommitHold(ctx, input)

	require.NoError(t, err)
	require.True(t, result.Success)
	// 価格は確定時点の現在価格でスナップショットされる
	assert.Equal(t, 4000, result.TotalAmount)
	require.NotNil(t, created)
	for _, s := range created.Seats {
		assert.Equal(t, 2000, s.Price)
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()

	confirmedBooking := func() *booking.Booking {
		return &booking.Booking{
			ID: "booking-1", UserID: "user-1", EventID: "event-1",
			Seats: []booking.BookedSeat{
				{SeatID: "seat-1", Price: 1500},
				{SeatID: "seat-2", Price: 1500},
			},
			TotalAmount: 3000,
			Status:      booking.StatusConfirmed,
		}
	}

	t.Run("支払い済みの予約をキャンセルすると返金開始が記録される", func(t *testing.T) {
		deps := newBookingTestDeps()
		b := confirmedBooking()

		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.bookingRepo.On("Cancel", ctx, deps.tx, "booking-1").Return(int64(1), nil)
		deps.inventoryRepo.On("ReleaseSeats", ctx, deps.tx, "event-1", []string{"seat-1", "seat-2"}).Return(int64(2), nil)
		deps.paymentRepo.On("MarkRefundInitiated", ctx, deps.tx, "booking-1").Return(int64(1), nil)
		deps.tx.On("Commit").Return(nil)
		deps.tx.On("Rollback").Return(nil)
		deps.cache.On("Invalidate", ctx, "event-1").Return(nil)
		deps.publisher.On("PublishBookingCancelled", ctx, mock.MatchedBy(func(e queue.BookingCancelledEvent) bool {
			return e.RefundRequired
		})).Return(nil)

		ok, err := deps.service.CancelBooking(ctx, "booking-1", "user-1", false)
		require.NoError(t, err)
		assert.True(t, ok)
		deps.paymentRepo.AssertCalled(t, "MarkRefundInitiated", ctx, deps.tx, "booking-1")
	})

	t.Run("支払い前の予約は返金なしでキャンセルされる", func(t *testing.T) {
		deps := newBookingTestDeps()
		b := confirmedBooking()
		b.Status = booking.StatusPendingPayment

		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.bookingRepo.On("Cancel", ctx, deps.tx, "booking-1").Return(int64(1), nil)
		deps.inventoryRepo.On("ReleaseSeats", ctx, deps.tx, "event-1", []string{"seat-1", "seat-2"}).Return(int64(2), nil)
		deps.paymentRepo.On("MarkRefundInitiated", ctx, deps.tx, "booking-1").Return(int64(0), nil)
		deps.tx.On("Commit").Return(nil)
		deps.tx.On("Rollback").Return(nil)
		deps.cache.On("Invalidate", ctx, "event-1").Return(nil)
		deps.publisher.On("PublishBookingCancelled", ctx, mock.MatchedBy(func(e queue.BookingCancelledEvent) bool {
			return !e.RefundRequired
		})).Return(nil)

		ok, err := deps.service.CancelBooking(ctx, "booking-1", "user-1", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("事前確認の後に状態が変わっていたら副作用なしでfalseを返す", func(t *testing.T) {
		deps := newBookingTestDeps()
		b := confirmedBooking()
		b.Status = booking.StatusPendingPayment

		// 読み取り後に別フローが状態を進めた想定。条件付き更新が0件を返す
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.bookingRepo.On("Cancel", ctx, deps.tx, "booking-1").Return(int64(0), nil)
		deps.tx.On("Rollback").Return(nil)

		ok, err := deps.service.CancelBooking(ctx, "booking-1", "user-1", false)
		require.NoError(t, err)
		assert.False(t, ok)
		deps.inventoryRepo.AssertNotCalled(t, "ReleaseSeats",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		deps.paymentRepo.AssertNotCalled(t, "MarkRefundInitiated",
			mock.Anything, mock.Anything, mock.Anything)
		deps.publisher.AssertNotCalled(t, "PublishBookingCancelled", mock.Anything, mock.Anything)
		deps.tx.AssertNotCalled(t, "Commit")
	})

	t.Run("他人の予約は管理者以外キャンセルできない", func(t *testing.T) {
		deps := newBookingTestDeps()
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(confirmedBooking(), nil)

		ok, err := deps.service.CancelBooking(ctx, "booking-1", "user-other", false)
		require.NoError(t, err)
		assert.False(t, ok)
		deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("管理者は他人の予約をキャンセルできる", func(t *testing.T) {
		deps := newBookingTestDeps()
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(confirmedBooking(), nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.bookingRepo.On("Cancel", ctx, deps.tx, "booking-1").Return(int64(1), nil)
		deps.inventoryRepo.On("ReleaseSeats", ctx, deps.tx, "event-1", []string{"seat-1", "seat-2"}).Return(int64(2), nil)
		deps.paymentRepo.On("MarkRefundInitiated", ctx, deps.tx, "booking-1").Return(int64(0), nil)
		deps.tx.On("Commit").Return(nil)
		deps.tx.On("Rollback").Return(nil)
		deps.cache.On("Invalidate", ctx, "event-1").Return(nil)
		deps.publisher.On("PublishBookingCancelled", ctx, mock.AnythingOfType("queue.BookingCancelledEvent")).Return(nil)

		ok, err := deps.service.CancelBooking(ctx, "booking-1", "admin-1", true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("キャンセル済みの予約は副作用なしでfalseを返す", func(t *testing.T) {
		deps := newBookingTestDeps()
		b := confirmedBooking()
		b.Status = booking.StatusCancelled
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)

		ok, err := deps.service.CancelBooking(ctx, "booking-1", "user-1", false)
		require.NoError(t, err)
		assert.False(t, ok)
		deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("存在しない予約は副作用なしでfalseを返す", func(t *testing.T) {
		deps := newBookingTestDeps()
		deps.bookingRepo.On("GetByID", ctx, "booking-missing").Return(nil, booking.ErrBookingNotFound)

		ok, err := deps.service.CancelBooking(ctx, "booking-missing", "user-1", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()

	b := &booking.Booking{
		ID: "booking-1", UserID: "user-1", EventID: "event-1",
		Seats:  []booking.BookedSeat{{SeatID: "seat-1", Price: 1500}},
		Status: booking.StatusConfirmed,
	}

	t.Run("本人は参照できる", func(t *testing.T) {
		deps := newBookingTestDeps()
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)

		got, err := deps.service.GetBooking(ctx, "booking-1", "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	})

	t.Run("他人の予約は見つからない扱いになる", func(t *testing.T) {
		deps := newBookingTestDeps()
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)

		_, err := deps.service.GetBooking(ctx, "booking-1", "user-other", false)
		assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	})

	t.Run("管理者は他人の予約を参照できる", func(t *testing.T) {
		deps := newBookingTestDeps()
		deps.bookingRepo.On("GetByID", ctx, "booking-1").Return(b, nil)

		got, err := deps.service.GetBooking(ctx, "booking-1", "admin-1", true)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	})
}
