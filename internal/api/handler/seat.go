package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type SeatHandler struct {
	service InventoryServiceInterface
}

func NewSeatHandler(s InventoryServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type AvailableSeatResponse struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seat_number"`
	Tier       string `json:"tier"`
	Section    string `json:"section"`
	Row        string `json:"row"`
	Price      int    `json:"price"`
}

type CheckAvailabilityRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1"`
}

// Initialize godoc
// @Summary イベントの座席在庫を初期化
// @Description スタジアムの全座席に対して在庫レコードを作成します（管理者用）
// @Tags seats
// @Produce json
// @Param event_id path string true "イベントID"
// @Success 201 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /events/{event_id}/seats/initialize [post]
func (h *SeatHandler) Initialize(c echo.Context) error {
	eventID := c.Param("event_id")
	count, err := h.service.InitializeEventSeats(c.Request().Context(), eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]int{"created": count})
}

// GetAvailable godoc
// @Summary 空席一覧を取得
// @Description 確保可能な座席の一覧を取得します。期限切れホールド中の座席も含まれます
// @Tags seats
// @Produce json
// @Param event_id path string true "イベントID"
// @Success 200 {array} AvailableSeatResponse
// @Router /events/{event_id}/seats [get]
func (h *SeatHandler) GetAvailable(c echo.Context) error {
	eventID := c.Param("event_id")
	seats, err := h.service.GetAvailableSeats(c.Request().Context(), eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	resp := make([]AvailableSeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = AvailableSeatResponse{
			ID:         s.ID,
			SeatNumber: s.SeatNumber,
			Tier:       string(s.Tier),
			Section:    s.Section,
			Row:        s.Row,
			Price:      s.Price,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckAvailability godoc
// @Summary 座席の空き状況を確認
// @Description 指定座席ごとに現在確保可能かどうかを返します
// @Tags seats
// @Accept json
// @Produce json
// @Param event_id path string true "イベントID"
// @Param request body CheckAvailabilityRequest true "確認する座席ID"
// @Success 200 {object} map[string]bool
// @Router /events/{event_id}/seats/check [post]
func (h *SeatHandler) CheckAvailability(c echo.Context) error {
	eventID := c.Param("event_id")
	var req CheckAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	availability, err := h.service.CheckSeatAvailability(c.Request().Context(), eventID, req.SeatIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	return c.JSON(http.StatusOK, availability)
}

// CountAvailable godoc
// @Summary 空席数を取得
// @Description 確保可能な座席数を取得します（キャッシュあり、最大30秒の遅延）
// @Tags seats
// @Produce json
// @Param event_id path string true "イベントID"
// @Success 200 {object} map[string]int
// @Router /events/{event_id}/seats/count [get]
func (h *SeatHandler) CountAvailable(c echo.Context) error {
	eventID := c.Param("event_id")
	count, err := h.service.CountAvailableSeats(c.Request().Context(), eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
