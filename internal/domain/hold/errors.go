package hold

import "errors"

// Hold ドメインのエラー定義
var (
	ErrHoldNotFound    = errors.New("ホールドが見つかりません")
	ErrHoldExpired     = errors.New("ホールドの有効期限が切れています")
	ErrEventIDRequired = errors.New("イベントIDは必須です")
	ErrUserIDRequired  = errors.New("ユーザーIDは必須です")
	ErrSeatIDsRequired = errors.New("座席IDは必須です")
)
