package application

import (
	"time"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
)

// FailureKind はビジネス失敗の種別を表す
// 業務ルール上の失敗は error ではなく結果型で返す
type FailureKind string

const (
	FailureNotFound       FailureKind = "not_found"
	FailureConflict       FailureKind = "conflict"
	FailureInvalidRequest FailureKind = "invalid_request"
	FailureUnauthorized   FailureKind = "unauthorized"
	FailureDependency     FailureKind = "dependency_failure"
)

// HoldResult は座席ホールド操作の結果を表す
type HoldResult struct {
	Success     bool
	FailureKind FailureKind
	Message     string

	HoldID    string
	HeldUntil time.Time
	HeldSeats []string

	// 失敗時のみ設定される
	MissingSeats     []string
	UnavailableSeats []string
}

func holdFailure(kind FailureKind, message string) *HoldResult {
	return &HoldResult{FailureKind: kind, Message: message}
}

// BookingResult は予約確定・支払い確定操作の結果を表す
type BookingResult struct {
	Success     bool
	FailureKind FailureKind
	Message     string

	BookingID   string
	TotalAmount int
	Status      booking.Status
	BookedSeats []booking.BookedSeat
}

func bookingFailure(kind FailureKind, message string) *BookingResult {
	return &BookingResult{FailureKind: kind, Message: message}
}

func bookingSuccess(b *booking.Booking) *BookingResult {
	return &BookingResult{
		Success:     true,
		BookingID:   b.ID,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
		BookedSeats: b.Seats,
	}
}
