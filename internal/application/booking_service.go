package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/hold"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/queue"
	redisinfra "github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/metrics"
)

// BookingService はホールドから予約への変換とキャンセルを管理する
type BookingService struct {
	txManager     transaction.Manager
	bookingRepo   booking.Repository
	holdRepo      hold.Repository
	inventoryRepo inventory.Repository
	paymentRepo   payment.Repository
	cache         redisinfra.SeatCacheInterface
	publisher     queue.EventPublisher
	metrics       *metrics.Metrics
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	hr hold.Repository,
	ir inventory.Repository,
	pr payment.Repository,
	cache redisinfra.SeatCacheInterface,
	publisher queue.EventPublisher,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:     tm,
		bookingRepo:   br,
		holdRepo:      hr,
		inventoryRepo: ir,
		paymentRepo:   pr,
		cache:         cache,
		publisher:     publisher,
		metrics:       m,
	}
}

type CommitHoldInput struct {
	EventID string
	HoldID  string
	UserID  string
	SeatIDs []string

	// ConfirmDirectly が true の場合、支払いフェーズを挟まず confirmed で作成する
	ConfirmDirectly bool
}

// CommitHold は有効なホールドを予約に変換する
// 予約の作成・座席の booked 遷移・ホールドの削除は1トランザクションで行う
func (s *BookingService) CommitHold(ctx context.Context, input CommitHoldInput) (*BookingResult, error) {
	if input.EventID == "" || input.HoldID == "" || input.UserID == "" || len(input.SeatIDs) == 0 {
		s.countBooking("invalid")
		return bookingFailure(FailureInvalidRequest, "Event id, hold id, user id and seat ids are required"), nil
	}

	// 1. ホールドを再取得し、本人のもので有効期限内であることを確認する
	// ホールド時に検証済みでも、時間経過があるため再検証は必須
	now := time.Now()
	h, err := s.holdRepo.GetByIDForUser(ctx, input.HoldID, input.UserID)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			s.countBooking("not_found")
			return bookingFailure(FailureNotFound, "Seat hold expired or not found"), nil
		}
		return nil, fmt.Errorf("ホールド取得に失敗: %w", err)
	}
	if !h.IsActiveAt(now) {
		s.countBooking("not_found")
		return bookingFailure(FailureNotFound, "Seat hold expired or not found"), nil
	}

	// 2. 要求座席がホールド対象の部分集合であることを確認する
	if !h.ContainsAll(input.SeatIDs) {
		s.countBooking("invalid")
		return bookingFailure(FailureInvalidRequest, "Requested seats do not match the held seats"), nil
	}

	// 3. 在庫レコードを再取得し、全席がまだ有効なホールド中であることを確認する
	records, err := s.inventoryRepo.FindByEventAndIDs(ctx, input.EventID, input.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("座席在庫取得に失敗: %w", err)
	}
	if len(records) != len(input.SeatIDs) {
		s.countBooking("conflict")
		return bookingFailure(FailureConflict, "Some seats are no longer held"), nil
	}
	for _, r := range records {
		if !r.IsHeldAt(now) {
			s.countBooking("conflict")
			return bookingFailure(FailureConflict, "Some seats are no longer held"), nil
		}
	}

	// 4. 確定時点の現在価格で合計金額を計算する（ホールド時点の価格ではない）
	seats := make([]booking.BookedSeat, len(records))
	for i, r := range records {
		seats[i] = booking.BookedSeat{SeatID: r.ID, Price: r.CurrentPrice}
	}

	status := booking.StatusPendingPayment
	if input.ConfirmDirectly {
		status = booking.StatusConfirmed
	}
	b := booking.NewBooking(input.EventID, input.UserID, seats, status)
	if err := b.Validate(); err != nil {
		s.countBooking("invalid")
		return bookingFailure(FailureInvalidRequest, err.Error()), nil
	}

	// 5〜7. 予約作成・座席遷移・ホールド削除を1トランザクションで行う
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, err
	}

	modified, err := s.inventoryRepo.BookSeats(ctx, tx, input.EventID, input.SeatIDs)
	if err != nil {
		return nil, err
	}
	if int(modified) != len(input.SeatIDs) {
		// スイーパーや並行処理に負けた。予約の挿入ごとロールバックする
		s.countBooking("conflict")
		return bookingFailure(FailureConflict, "Some seats are no longer held"), nil
	}

	if err := s.holdRepo.Delete(ctx, tx, h.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, input.EventID)
	s.countBooking("success")
	logger.Info("予約を確定しました",
		zap.String("booking_id", b.ID),
		zap.String("event_id", b.EventID),
		zap.Int("total_amount", b.TotalAmount),
		zap.String("status", string(b.Status)))

	if input.ConfirmDirectly {
		s.publishConfirmed(ctx, b)
	}

	return bookingSuccess(b), nil
}

// CancelBooking は予約をキャンセルし、座席を available に戻す
// 支払い済みの場合は返金開始を記録する。見つからない・キャンセル不能・
// 権限なしの場合は副作用なしで false を返す
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string, isAdmin bool) (bool, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("予約取得に失敗: %w", err)
	}
	if !b.BelongsTo(userID) && !isAdmin {
		return false, nil
	}
	if !b.IsCancellable() {
		return false, nil
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	cancelled, err := s.bookingRepo.Cancel(ctx, tx, b.ID)
	if err != nil {
		return false, err
	}
	if cancelled == 0 {
		// 事前読み取りの後に別のフローが状態を変えた。副作用なしで終える
		return false, nil
	}
	if _, err := s.inventoryRepo.ReleaseSeats(ctx, tx, b.EventID, b.SeatIDs()); err != nil {
		return false, err
	}
	// 並行する支払い確定を取りこぼさないよう、同一トランザクション内で
	// 予約IDから直接 captured の支払いを返金開始に更新する
	refunds, err := s.paymentRepo.MarkRefundInitiated(ctx, tx, b.ID)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("コミットに失敗: %w", err)
	}

	refundRequired := refunds > 0
	s.invalidateCache(ctx, b.EventID)
	logger.Info("予約をキャンセルしました",
		zap.String("booking_id", b.ID),
		zap.Bool("refund_required", refundRequired))

	if s.publisher != nil {
		if err := s.publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:      b.ID,
			EventID:        b.EventID,
			UserID:         b.UserID,
			SeatIDs:        b.SeatIDs(),
			RefundRequired: refundRequired,
			CancelledAt:    time.Now(),
		}); err != nil {
			logger.Warn("キャンセルイベント発行に失敗", zap.Error(err))
		}
	}

	return true, nil
}

// GetBooking は予約を取得する。本人または管理者のみ参照できる
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID string, isAdmin bool) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.BelongsTo(userID) && !isAdmin {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

// GetUserBookings はユーザーの予約一覧を取得する
func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *BookingService) publishConfirmed(ctx context.Context, b *booking.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		SeatIDs:     b.SeatIDs(),
		TotalAmount: b.TotalAmount,
		ConfirmedAt: time.Now(),
	}); err != nil {
		logger.Warn("確定イベント発行に失敗", zap.Error(err))
	}
}

func (s *BookingService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}
