package stadium

import "errors"

// Stadium ドメインのエラー定義
var (
	ErrStadiumNotFound     = errors.New("スタジアムが見つかりません")
	ErrStadiumNameRequired = errors.New("スタジアム名は必須です")
	ErrSectionsRequired    = errors.New("セクションは1つ以上必要です")
)
