package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/queue"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/metrics"
)

// DefaultCurrency は支払いレコードの通貨コード
const DefaultCurrency = "INR"

// PaymentService は外部決済の検証結果を予約に反映する
type PaymentService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	paymentRepo payment.Repository
	verifier    payment.Verifier
	publisher   queue.EventPublisher
	metrics     *metrics.Metrics
}

func NewPaymentService(
	tm transaction.Manager,
	br booking.Repository,
	pr payment.Repository,
	verifier payment.Verifier,
	publisher queue.EventPublisher,
	m *metrics.Metrics,
) *PaymentService {
	return &PaymentService{
		txManager:   tm,
		bookingRepo: br,
		paymentRepo: pr,
		verifier:    verifier,
		publisher:   publisher,
		metrics:     m,
	}
}

// ConfirmPayment は支払い待ちの予約を確定し、支払いレコードを作成する
// 更新は status = pending_payment を条件とし、同じ支払いIDでの再実行は
// 冪等に成功を返す。別の支払いIDでの上書きは競合として拒否する
func (s *PaymentService) ConfirmPayment(ctx context.Context, bookingID, externalPaymentID string) (*BookingResult, error) {
	if bookingID == "" || externalPaymentID == "" {
		s.countConfirmation("invalid")
		return bookingFailure(FailureInvalidRequest, "Booking id and payment id are required"), nil
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			s.countConfirmation("not_found")
			return bookingFailure(FailureNotFound, "Booking not found"), nil
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	modified, err := s.bookingRepo.ConfirmPayment(ctx, tx, bookingID, externalPaymentID)
	if err != nil {
		return nil, err
	}
	if modified == 0 {
		// pending_payment でなかった。再読込して分類する
		return s.classifyConfirmConflict(ctx, bookingID, externalPaymentID)
	}

	pay := payment.NewCaptured(bookingID, externalPaymentID, b.TotalAmount, DefaultCurrency)
	if err := s.paymentRepo.Create(ctx, tx, pay); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countConfirmation("success")
	logger.Info("支払いを確定しました",
		zap.String("booking_id", bookingID),
		zap.Int("amount", b.TotalAmount))

	b.Status = booking.StatusConfirmed
	b.PaymentID = &externalPaymentID
	s.publishConfirmed(ctx, b)

	return bookingSuccess(b), nil
}

// classifyConfirmConflict は条件付き更新が0件だった場合の結果を分類する
func (s *PaymentService) classifyConfirmConflict(ctx context.Context, bookingID, externalPaymentID string) (*BookingResult, error) {
	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			s.countConfirmation("not_found")
			return bookingFailure(FailureNotFound, "Booking not found"), nil
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}

	// 同じ支払いIDで確定済みなら冪等に成功とみなす
	if current.Status == booking.StatusConfirmed &&
		current.PaymentID != nil && *current.PaymentID == externalPaymentID {
		s.countConfirmation("idempotent")
		return bookingSuccess(current), nil
	}

	s.countConfirmation("conflict")
	return bookingFailure(FailureConflict, "Booking is not awaiting payment"), nil
}

type VerifyAndConfirmInput struct {
	BookingID         string
	ExternalPaymentID string
	OrderID           string
	Signature         string
}

// VerifyAndConfirm は外部決済の正当性を検証してから支払いを確定する
func (s *PaymentService) VerifyAndConfirm(ctx context.Context, input VerifyAndConfirmInput) (*BookingResult, error) {
	if s.verifier == nil {
		return nil, payment.ErrVerifierUnavailable
	}

	genuine, err := s.verifier.Verify(ctx, payment.VerificationInput{
		ExternalPaymentID: input.ExternalPaymentID,
		OrderID:           input.OrderID,
		Signature:         input.Signature,
	})
	if err != nil {
		s.countConfirmation("error")
		logger.Error("支払い検証サービスでエラー", zap.Error(err))
		return bookingFailure(FailureDependency, "Payment verification is temporarily unavailable"), nil
	}
	if !genuine {
		s.countConfirmation("verification_failed")
		return bookingFailure(FailureInvalidRequest, "Payment verification failed"), nil
	}

	return s.ConfirmPayment(ctx, input.BookingID, input.ExternalPaymentID)
}

func (s *PaymentService) publishConfirmed(ctx context.Context, b *booking.Booking) {
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

func (s *PaymentService) countConfirmation(status string) {
	if s.metrics != nil {
		s.metrics.PaymentConfirmationsTotal.WithLabelValues(status).Inc()
	}
}
