package inventory

import "time"

// Status はイベント座席の状態を表す
type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusBooked    Status = "booked"
)

// EventSeat はイベントごとの座席在庫レコードを表す
// スタジアム座席（seat_id）とイベントの組に対して1レコード存在する
type EventSeat struct {
	ID           string
	EventID      string
	SeatID       string
	Status       Status
	CurrentPrice int
	HeldUntil    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int // 楽観的ロック用
}

// NewEventSeat は新しい座席在庫レコードを作成する
func NewEventSeat(eventID, seatID string, price int) *EventSeat {
	now := time.Now()
	return &EventSeat{
		EventID:      eventID,
		SeatID:       seatID,
		Status:       StatusAvailable,
		CurrentPrice: price,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// IsAvailableAt は指定時刻で座席を新規に確保できるかを返す
// 期限切れのホールドは解放前でも available と同等に扱う
func (s *EventSeat) IsAvailableAt(now time.Time) bool {
	switch s.Status {
	case StatusAvailable:
		return true
	case StatusHeld:
		return s.HeldUntil == nil || s.HeldUntil.Before(now)
	default:
		return false
	}
}

// IsHeldAt は指定時刻で有効なホールド中かを返す
func (s *EventSeat) IsHeldAt(now time.Time) bool {
	return s.Status == StatusHeld && s.HeldUntil != nil && s.HeldUntil.After(now)
}

// EffectiveStatus は期限切れホールドを available に読み替えた状態を返す
func (s *EventSeat) EffectiveStatus(now time.Time) Status {
	if s.Status == StatusHeld && !s.IsHeldAt(now) {
		return StatusAvailable
	}
	return s.Status
}

// Validate は座席在庫レコードの検証を行う
func (s *EventSeat) Validate() error {
	if s.EventID == "" {
		return ErrEventIDRequired
	}
	if s.SeatID == "" {
		return ErrSeatIDRequired
	}
	if s.CurrentPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}
