package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/payment"
)

// HMACVerifier は決済ゲートウェイの署名をローカルで検証する
// 署名は注文IDと支払いIDを "|" で連結した文字列の HMAC-SHA256 (hex)
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

var _ payment.Verifier = (*HMACVerifier)(nil)

// Verify は支払いが真正かを返す
func (v *HMACVerifier) Verify(ctx context.Context, input payment.VerificationInput) (bool, error) {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(input.OrderID + "|" + input.ExternalPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(input.Signature)), nil
}
