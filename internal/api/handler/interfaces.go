package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
)

// HoldServiceInterface はホールドサービスのインターフェース
type HoldServiceInterface interface {
	HoldSeats(ctx context.Context, input application.HoldSeatsInput) (*application.HoldResult, error)
	ReleaseHold(ctx context.Context, holdID, userID string) (*application.HoldResult, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CommitHold(ctx context.Context, input application.CommitHoldInput) (*application.BookingResult, error)
	CancelBooking(ctx context.Context, bookingID, userID string, isAdmin bool) (bool, error)
	GetBooking(ctx context.Context, bookingID, userID string, isAdmin bool) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// PaymentServiceInterface は支払いサービスのインターフェース
type PaymentServiceInterface interface {
	ConfirmPayment(ctx context.Context, bookingID, externalPaymentID string) (*application.BookingResult, error)
	VerifyAndConfirm(ctx context.Context, input application.VerifyAndConfirmInput) (*application.BookingResult, error)
}

// InventoryServiceInterface は座席在庫サービスのインターフェース
type InventoryServiceInterface interface {
	InitializeEventSeats(ctx context.Context, eventID string) (int, error)
	GetAvailableSeats(ctx context.Context, eventID string) ([]*application.AvailableSeat, error)
	CheckSeatAvailability(ctx context.Context, eventID string, seatIDs []string) (map[string]bool, error)
	CountAvailableSeats(ctx context.Context, eventID string) (int, error)
}

// EventServiceInterface はイベント・スタジアムサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	CreateStadium(ctx context.Context, input application.CreateStadiumInput) (*stadium.Stadium, error)
	GetStadium(ctx context.Context, id string) (*stadium.Stadium, error)
}

// failureStatus はビジネス失敗種別をHTTPステータスに対応付ける
func failureStatus(kind application.FailureKind) int {
	switch kind {
	case application.FailureNotFound:
		return http.StatusNotFound
	case application.FailureConflict:
		return http.StatusConflict
	case application.FailureInvalidRequest:
		return http.StatusBadRequest
	case application.FailureUnauthorized:
		return http.StatusForbidden
	case application.FailureDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// currentUser はリクエストからユーザーIDと管理者フラグを取り出す
// JWT認証済みならコンテキスト値、なければ X-User-ID ヘッダーを使う
func currentUser(c echo.Context) (string, bool) {
	if uid, ok := c.Get("user_id").(string); ok && uid != "" {
		isAdmin, _ := c.Get("is_admin").(bool)
		return uid, isAdmin
	}
	return c.Request().Header.Get("X-User-ID"), false
}
