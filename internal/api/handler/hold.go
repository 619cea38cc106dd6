package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
)

type HoldHandler struct {
	service HoldServiceInterface
}

func NewHoldHandler(s HoldServiceInterface) *HoldHandler {
	return &HoldHandler{service: s}
}

type CreateHoldRequest struct {
	EventID string   `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs []string `json:"seat_ids" validate:"required,min=1" example:"seat-A1,seat-A2"`
}

type HoldResponse struct {
	HoldID    string    `json:"hold_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventID   string    `json:"event_id"`
	SeatIDs   []string  `json:"seat_ids"`
	HeldUntil time.Time `json:"held_until"`
}

// HoldFailureResponse はホールド失敗時のレスポンス
type HoldFailureResponse struct {
	Error            string   `json:"error"`
	MissingSeats     []string `json:"missing_seats,omitempty"`
	UnavailableSeats []string `json:"unavailable_seats,omitempty"`
}

// Create godoc
// @Summary 座席をホールド
// @Description 指定座席をまとめて一時確保します（15分間有効、全席確保できた場合のみ成立）
// @Tags holds
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateHoldRequest true "ホールド情報"
// @Success 201 {object} HoldResponse
// @Failure 400 {object} HoldFailureResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} HoldFailureResponse "座席が存在しない"
// @Failure 409 {object} HoldFailureResponse "座席が確保済み"
// @Router /holds [post]
func (h *HoldHandler) Create(c echo.Context) error {
	userID, _ := currentUser(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.HoldSeats(c.Request().Context(), application.HoldSeatsInput{
		EventID: req.EventID, UserID: userID, SeatIDs: req.SeatIDs,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	if !result.Success {
		return c.JSON(failureStatus(result.FailureKind), HoldFailureResponse{
			Error:            result.Message,
			MissingSeats:     result.MissingSeats,
			UnavailableSeats: result.UnavailableSeats,
		})
	}

	return c.JSON(http.StatusCreated, HoldResponse{
		HoldID:    result.HoldID,
		EventID:   req.EventID,
		SeatIDs:   result.HeldSeats,
		HeldUntil: result.HeldUntil,
	})
}

// Release godoc
// @Summary ホールドを解放
// @Description 自分のホールドを明示的に解放し、座席を空席に戻します
// @Tags holds
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "ホールドID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} HoldFailureResponse
// @Router /holds/{id} [delete]
func (h *HoldHandler) Release(c echo.Context) error {
	userID, _ := currentUser(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	result, err := h.service.ReleaseHold(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	if !result.Success {
		return c.JSON(failureStatus(result.FailureKind), HoldFailureResponse{Error: result.Message})
	}
	return c.NoContent(http.StatusNoContent)
}
