package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CommitHoldRequest struct {
	EventID string   `json:"event_id" validate:"required"`
	HoldID  string   `json:"hold_id" validate:"required"`
	SeatIDs []string `json:"seat_ids" validate:"required,min=1"`

	// true の場合は支払いフェーズを挟まず即時確定する
	ConfirmDirectly bool `json:"confirm_directly"`
}

type BookedSeatResponse struct {
	SeatID string `json:"seat_id"`
	Price  int    `json:"price"`
}

type BookingResponse struct {
	ID          string               `json:"id"`
	EventID     string               `json:"event_id"`
	UserID      string               `json:"user_id"`
	Seats       []BookedSeatResponse `json:"seats"`
	TotalAmount int                  `json:"total_amount"`
	Status      string               `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	seats := make([]BookedSeatResponse, len(b.Seats))
	for i, s := range b.Seats {
		seats[i] = BookedSeatResponse{SeatID: s.SeatID, Price: s.Price}
	}
	return BookingResponse{
		ID: b.ID, EventID: b.EventID, UserID: b.UserID,
		Seats: seats, TotalAmount: b.TotalAmount,
		Status: string(b.Status), CreatedAt: b.CreatedAt,
	}
}

type CommitResultResponse struct {
	BookingID   string               `json:"booking_id"`
	TotalAmount int                  `json:"total_amount"`
	Status      string               `json:"status"`
	Seats       []BookedSeatResponse `json:"seats"`
}

func toCommitResultResponse(r *application.BookingResult) CommitResultResponse {
	seats := make([]BookedSeatResponse, len(r.BookedSeats))
	for i, s := range r.BookedSeats {
		seats[i] = BookedSeatResponse{SeatID: s.SeatID, Price: s.Price}
	}
	return CommitResultResponse{
		BookingID:   r.BookingID,
		TotalAmount: r.TotalAmount,
		Status:      string(r.Status),
		Seats:       seats,
	}
}

// Create godoc
// @Summary ホールドを予約に確定
// @Description 有効なホールドを予約に変換します。価格は確定時点の現在価格で記録されます
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CommitHoldRequest true "確定情報"
// @Success 201 {object} CommitResultResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "ホールドが期限切れまたは不存在"
// @Failure 409 {object} map[string]string "座席が別リクエストに取られた"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID, _ := currentUser(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CommitHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CommitHold(c.Request().Context(), application.CommitHoldInput{
		EventID:         req.EventID,
		HoldID:          req.HoldID,
		UserID:          userID,
		SeatIDs:         req.SeatIDs,
		ConfirmDirectly: req.ConfirmDirectly,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	if !result.Success {
		return c.JSON(failureStatus(result.FailureKind), map[string]string{"error": result.Message})
	}
	return c.JSON(http.StatusCreated, toCommitResultResponse(result))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 自分の予約を取得します（管理者は全予約を参照可能）
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	userID, isAdmin := currentUser(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"), userID, isAdmin)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "予約が見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetUserBookings godoc
// @Summary 予約一覧を取得
// @Description ログインユーザーの予約一覧を新しい順に取得します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	userID, _ := currentUser(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし座席を解放します。支払い済みの場合は返金を開始します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "キャンセル不可（不存在・権限なし・状態不正）"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, isAdmin := currentUser(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	ok, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), userID, isAdmin)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	if !ok {
		// 権限なし・状態不正も 404 に寄せる
		return echo.NewHTTPError(http.StatusNotFound, "予約をキャンセルできません")
	}
	return c.NoContent(http.StatusNoContent)
}
