package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Name        string `json:"name" validate:"required" example:"日本シリーズ第7戦"`
	StadiumID   string `json:"stadium_id" validate:"required"`
	Description string `json:"description"`
	StartAt     string `json:"start_at" validate:"required" example:"2026-10-31T18:00:00+09:00"`
	EndAt       string `json:"end_at" validate:"required" example:"2026-10-31T21:30:00+09:00"`
	BasePrice   int    `json:"base_price" validate:"required,gt=0" example:"1500"`
}

type EventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StadiumID   string `json:"stadium_id"`
	Description string `json:"description"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	BasePrice   int    `json:"base_price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		StadiumID:   e.StadiumID,
		Description: e.Description,
		StartAt:     e.StartAt.Format(time.RFC3339),
		EndAt:       e.EndAt.Format(time.RFC3339),
		BasePrice:   e.BasePrice,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary イベントを作成
// @Description 指定スタジアムで開催する新しいイベントを作成します
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}

	e, err := h.service.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Name:        req.Name,
		StadiumID:   req.StadiumID,
		Description: req.Description,
		StartAt:     startAt,
		EndAt:       endAt,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		if errors.Is(err, stadium.ErrStadiumNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "スタジアムが見つかりません")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "イベントが見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description イベントの一覧を取得します
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.service.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	resp := make([]*EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

type CreateStadiumRequest struct {
	Name     string            `json:"name" validate:"required" example:"メインスタジアム"`
	Location string            `json:"location" example:"東京都文京区"`
	Capacity int               `json:"capacity" validate:"required,gt=0"`
	Sections []stadium.Section `json:"sections" validate:"required,min=1"`
}

type StadiumResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Location string            `json:"location"`
	Capacity int               `json:"capacity"`
	Sections []stadium.Section `json:"sections"`
}

func toStadiumResponse(s *stadium.Stadium) *StadiumResponse {
	return &StadiumResponse{
		ID:       s.ID,
		Name:     s.Name,
		Location: s.Location,
		Capacity: s.Capacity,
		Sections: s.Sections,
	}
}

// CreateStadium godoc
// @Summary スタジアムを作成
// @Description 座席トポロジー付きのスタジアムを作成します
// @Tags stadiums
// @Accept json
// @Produce json
// @Param request body CreateStadiumRequest true "スタジアム情報"
// @Success 201 {object} StadiumResponse
// @Failure 400 {object} map[string]string
// @Router /stadiums [post]
func (h *EventHandler) CreateStadium(c echo.Context) error {
	var req CreateStadiumRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	st, err := h.service.CreateStadium(c.Request().Context(), application.CreateStadiumInput{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
		Sections: req.Sections,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toStadiumResponse(st))
}

// GetStadium godoc
// @Summary スタジアムを取得
// @Description 指定IDのスタジアムを取得します
// @Tags stadiums
// @Produce json
// @Param id path string true "スタジアムID"
// @Success 200 {object} StadiumResponse
// @Failure 404 {object} map[string]string
// @Router /stadiums/{id} [get]
func (h *EventHandler) GetStadium(c echo.Context) error {
	st, err := h.service.GetStadium(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, stadium.ErrStadiumNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "スタジアムが見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	return c.JSON(http.StatusOK, toStadiumResponse(st))
}
