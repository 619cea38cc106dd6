package hold

import "time"

// HoldDuration はホールドの有効期間（デフォルト15分）
const HoldDuration = 15 * time.Minute

// Hold は座席の一時確保を表す
// 期限付きの排他的なクレームであり、予約（Booking）への変換権でしかない
// 座席在庫レコードの所有権は持たない
type Hold struct {
	ID        string
	EventID   string
	UserID    string
	SeatIDs   []string
	HeldUntil time.Time
	CreatedAt time.Time
}

// NewHold は新しいホールドを作成する
func NewHold(eventID, userID string, seatIDs []string, heldUntil time.Time) *Hold {
	return &Hold{
		EventID:   eventID,
		UserID:    userID,
		SeatIDs:   seatIDs,
		HeldUntil: heldUntil,
		CreatedAt: time.Now(),
	}
}

// IsActiveAt は指定時刻でホールドが有効かを返す
func (h *Hold) IsActiveAt(now time.Time) bool {
	return h.HeldUntil.After(now)
}

// ContainsAll は指定された座席IDがすべてホールド対象に含まれるかを返す
func (h *Hold) ContainsAll(seatIDs []string) bool {
	held := make(map[string]struct{}, len(h.SeatIDs))
	for _, id := range h.SeatIDs {
		held[id] = struct{}{}
	}
	for _, id := range seatIDs {
		if _, ok := held[id]; !ok {
			return false
		}
	}
	return true
}

// Validate はホールドの検証を行う
func (h *Hold) Validate() error {
	if h.EventID == "" {
		return ErrEventIDRequired
	}
	if h.UserID == "" {
		return ErrUserIDRequired
	}
	if len(h.SeatIDs) == 0 {
		return ErrSeatIDsRequired
	}
	return nil
}
