package booking

import (
	"context"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を新しい順に取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// ConfirmPayment は支払い待ちの予約を confirmed に更新し支払いIDを設定する
	// status = pending_payment の場合のみ更新し、更新件数を返す
	ConfirmPayment(ctx context.Context, tx transaction.Tx, id, paymentID string) (int64, error)

	// Cancel はキャンセル可能な状態の予約を cancelled に更新する
	// status = pending_payment または confirmed の場合のみ更新し、更新件数を返す
	Cancel(ctx context.Context, tx transaction.Tx, id string) (int64, error)
}
