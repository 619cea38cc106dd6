package payment

import "time"

// Status は支払いの状態を表す
type Status string

const (
	StatusCreated         Status = "created"
	StatusCaptured        Status = "captured"
	StatusRefundInitiated Status = "refund_initiated"
)

// Payment は支払いレコードを表す
// 確定済みの予約と1対1で対応する
type Payment struct {
	ID                string
	BookingID         string
	ExternalPaymentID string
	Amount            int
	Currency          string
	Status            Status
	CreatedAt         time.Time
}

// NewCaptured は確定時の支払いレコードを作成する
func NewCaptured(bookingID, externalPaymentID string, amount int, currency string) *Payment {
	return &Payment{
		BookingID:         bookingID,
		ExternalPaymentID: externalPaymentID,
		Amount:            amount,
		Currency:          currency,
		Status:            StatusCaptured,
		CreatedAt:         time.Now(),
	}
}
