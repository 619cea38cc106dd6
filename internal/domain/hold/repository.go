package hold

import (
	"context"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

// Repository はホールドリポジトリのインターフェース
type Repository interface {
	// Create は新しいホールドを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, h *Hold) error

	// GetByIDForUser はIDとユーザーIDからホールドを取得する
	// 期限切れの判定は呼び出し側が行う
	GetByIDForUser(ctx context.Context, id, userID string) (*Hold, error)

	// Delete はホールドを削除する（トランザクション必須）
	Delete(ctx context.Context, tx transaction.Tx, id string) error

	// DeleteExpired は期限切れのホールドレコードをまとめて削除する
	DeleteExpired(ctx context.Context) (int64, error)
}
