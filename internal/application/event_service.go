package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
)

// EventService はイベント・スタジアムの薄いカタログ操作を提供する
// 座席在庫の価格計算に必要なデータの出入り口であり、状態機械には関与しない
type EventService struct {
	eventRepo   event.Repository
	stadiumRepo stadium.Repository
}

func NewEventService(er event.Repository, sr stadium.Repository) *EventService {
	return &EventService{eventRepo: er, stadiumRepo: sr}
}

type CreateEventInput struct {
	Name        string
	StadiumID   string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	BasePrice   int
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	if _, err := s.stadiumRepo.GetByID(ctx, input.StadiumID); err != nil {
		return nil, err
	}

	ev := event.NewEvent(input.Name, input.StadiumID, input.Description, input.StartAt, input.EndAt, input.BasePrice)
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.eventRepo.List(ctx, limit, offset)
}

type CreateStadiumInput struct {
	Name     string
	Location string
	Capacity int
	Sections []stadium.Section
}

func (s *EventService) CreateStadium(ctx context.Context, input CreateStadiumInput) (*stadium.Stadium, error) {
	st := stadium.NewStadium(input.Name, input.Location, input.Capacity, input.Sections)
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.stadiumRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *EventService) GetStadium(ctx context.Context, id string) (*stadium.Stadium, error) {
	return s.stadiumRepo.GetByID(ctx, id)
}
