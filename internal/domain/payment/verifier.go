package payment

import "context"

// VerificationInput は外部決済ゲートウェイから受け取る検証材料
type VerificationInput struct {
	ExternalPaymentID string
	OrderID           string
	Signature         string
}

// Verifier は外部決済ゲートウェイの信頼境界を表す
// 署名方式やAPIの詳細はこの境界の向こう側にあり、コアは真正かどうかの
// 判定結果にのみ反応する
type Verifier interface {
	// Verify は支払いが真正かを返す
	// ゲートウェイに到達できない場合のみ error を返す
	Verify(ctx context.Context, input VerificationInput) (bool, error)
}
