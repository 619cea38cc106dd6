package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound       = errors.New("予約が見つかりません")
	ErrBookingNotCancellable = errors.New("予約はキャンセルできない状態です")
	ErrBookingNotPending     = errors.New("予約は支払い待ちではありません")
	ErrEventIDRequired       = errors.New("イベントIDは必須です")
	ErrUserIDRequired        = errors.New("ユーザーIDは必須です")
	ErrSeatsRequired         = errors.New("座席は必須です")
)
