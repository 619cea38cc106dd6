package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) CreateStadium(ctx context.Context, input application.CreateStadiumInput) (*stadium.Stadium, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stadium.Stadium), args.Error(1)
}

func (m *MockEventService) GetStadium(ctx context.Context, id string) (*stadium.Stadium, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stadium.Stadium), args.Error(1)
}

func TestEventHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にイベントを作成できる", func(t *testing.T) {
		mockService := new(MockEventService)
		now := time.Now()
		mockService.On("CreateEvent", mock.Anything, mock.AnythingOfType("application.CreateEventInput")).
			Return(&event.Event{
				ID: "event-123", Name: "開幕戦", StadiumID: "stadium-1",
				StartAt: now.Add(24 * time.Hour), EndAt: now.Add(27 * time.Hour),
				BasePrice: 1500, Status: event.StatusUpcoming, CreatedAt: now,
			}, nil)

		handler := NewEventHandler(mockService)

		reqBody := `{
			"name": "開幕戦",
			"stadium_id": "stadium-1",
			"start_at": "2026-10-01T18:00:00+09:00",
			"end_at": "2026-10-01T21:00:00+09:00",
			"base_price": 1500
		}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "event-123", resp.ID)
		assert.Equal(t, "upcoming", resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("スタジアムが存在しない場合は404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("CreateEvent", mock.Anything, mock.AnythingOfType("application.CreateEventInput")).
			Return(nil, stadium.ErrStadiumNotFound)

		handler := NewEventHandler(mockService)

		reqBody := `{
			"name": "開幕戦",
			"stadium_id": "missing",
			"start_at": "2026-10-01T18:00:00+09:00",
			"end_at": "2026-10-01T21:00:00+09:00",
			"base_price": 1500
		}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("時刻形式が不正な場合は400", func(t *testing.T) {
		mockService := new(MockEventService)
		handler := NewEventHandler(mockService)

		reqBody := `{
			"name": "開幕戦",
			"stadium_id": "stadium-1",
			"start_at": "not-a-time",
			"end_at": "2026-10-01T21:00:00+09:00",
			"base_price": 1500
		}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "CreateEvent")
	})
}

func TestEventHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("イベントを取得できる", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("GetEvent", mock.Anything, "event-123").
			Return(&event.Event{ID: "event-123", Name: "開幕戦", Status: event.StatusUpcoming}, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/event-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id")
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("存在しない場合は404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("GetEvent", mock.Anything, "missing").
			Return(nil, event.ErrEventNotFound)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/missing", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id")
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.GetByID(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestEventHandler_CreateStadium(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にスタジアムを作成できる", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("CreateStadium", mock.Anything, mock.AnythingOfType("application.CreateStadiumInput")).
			Return(&stadium.Stadium{
				ID: "stadium-1", Name: "メインスタジアム", Capacity: 100,
				Sections: []stadium.Section{{ID: "sec-1", Name: "内野A"}},
			}, nil)

		handler := NewEventHandler(mockService)

		reqBody := `{
			"name": "メインスタジアム",
			"capacity": 100,
			"sections": [{"id": "sec-1", "name": "内野A", "seat_rows": [{"id": "row-a", "name": "A", "seats": [{"id": "A1", "number": "A-1", "tier": "standard"}]}]}]
		}`
		req := httptest.NewRequest(http.MethodPost, "/stadiums", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.CreateStadium(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp StadiumResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "stadium-1", resp.ID)
		mockService.AssertExpectations(t)
	})
}
