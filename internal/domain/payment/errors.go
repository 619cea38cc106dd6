package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound     = errors.New("支払いレコードが見つかりません")
	ErrVerificationFailed  = errors.New("支払いの検証に失敗しました")
	ErrVerifierUnavailable = errors.New("支払い検証サービスに接続できません")
)
