package event

import "time"

// Status はイベントの状態を表す
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Event はイベントエンティティを表す
// 座席在庫レコード作成時の基準価格を提供する
type Event struct {
	ID          string
	Name        string
	StadiumID   string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	BasePrice   int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewEvent は新しいイベントを作成する
func NewEvent(name, stadiumID, description string, startAt, endAt time.Time, basePrice int) *Event {
	now := time.Now()
	return &Event{
		Name:        name,
		StadiumID:   stadiumID,
		Description: description,
		StartAt:     startAt,
		EndAt:       endAt,
		BasePrice:   basePrice,
		Status:      StatusUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// IsBookingOpen は予約を受け付けられるかを返す
func (e *Event) IsBookingOpen() bool {
	return e.Status == StatusUpcoming && time.Now().Before(e.StartAt)
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.StadiumID == "" {
		return ErrStadiumIDRequired
	}
	if e.BasePrice < 0 {
		return ErrInvalidBasePrice
	}
	if e.EndAt.Before(e.StartAt) {
		return ErrInvalidEventTime
	}
	return nil
}
