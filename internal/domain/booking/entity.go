package booking

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
)

// BookedSeat は予約時点の座席と価格のスナップショットを表す
// 予約作成後は不変
type BookedSeat struct {
	SeatID string
	Price  int
}

// Booking は予約エンティティを表す
type Booking struct {
	ID          string
	UserID      string
	EventID     string
	Seats       []BookedSeat
	TotalAmount int
	Status      Status
	PaymentID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking は新しい予約を作成する
// 価格は確定時点の座席在庫レコードの現在価格をスナップショットする
func NewBooking(eventID, userID string, seats []BookedSeat, status Status) *Booking {
	total := 0
	for _, s := range seats {
		total += s.Price
	}
	now := time.Now()
	return &Booking{
		UserID:      userID,
		EventID:     eventID,
		Seats:       seats,
		TotalAmount: total,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SeatIDs は予約対象の座席ID一覧を返す
func (b *Booking) SeatIDs() []string {
	ids := make([]string, len(b.Seats))
	for i, s := range b.Seats {
		ids[i] = s.SeatID
	}
	return ids
}

// IsCancellable はキャンセル可能な状態かを返す
// confirmed からのキャンセルは返金フローを伴うが許可される
func (b *Booking) IsCancellable() bool {
	return b.Status == StatusPendingPayment || b.Status == StatusConfirmed
}

// BelongsTo は予約が指定ユーザーのものかを返す
func (b *Booking) BelongsTo(userID string) bool {
	return b.UserID == userID
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if len(b.Seats) == 0 {
		return ErrSeatsRequired
	}
	return nil
}
