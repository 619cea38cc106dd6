package inventory

import "errors"

// 座席在庫ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatsNotFound      = errors.New("一部の座席が見つかりません")
	ErrSeatsUnavailable   = errors.New("一部の座席は確保できません")
	ErrTransitionConflict = errors.New("座席状態の更新が競合しました")
	ErrEventIDRequired    = errors.New("イベントIDは必須です")
	ErrSeatIDRequired     = errors.New("座席IDは必須です")
	ErrInvalidPrice       = errors.New("価格は0以上である必要があります")
)
