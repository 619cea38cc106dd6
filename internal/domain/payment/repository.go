package payment

import (
	"context"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

// Repository は支払いリポジトリのインターフェース
type Repository interface {
	// Create は新しい支払いレコードを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Payment) error

	// GetByBookingID は予約IDから支払いレコードを取得する
	GetByBookingID(ctx context.Context, bookingID string) (*Payment, error)

	// MarkRefundInitiated は予約IDに紐づく captured の支払いを refund_initiated に
	// 更新し、更新件数を返す。実際の返金処理は外部プロセスに委ねられる
	MarkRefundInitiated(ctx context.Context, tx transaction.Tx, bookingID string) (int64, error)
}
