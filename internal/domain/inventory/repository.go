package inventory

import (
	"context"
	"time"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

// Repository は座席在庫リポジトリのインターフェース
//
// HoldSeats / BookSeats / ReleaseSeats は status を条件に含む一括更新で
// 実装し、実際に更新できた件数を返す。呼び出し側は件数が要求数と一致
// しない場合に操作全体を失敗とみなし、トランザクションをロールバック
// する（compare-and-swap 契約）。
type Repository interface {
	// CreateBulk は複数の座席在庫レコードを一括作成する
	CreateBulk(ctx context.Context, seats []*EventSeat) error

	// FindByEventAndIDs は指定イベントの指定IDのレコードを取得する（ロックなし）
	// 存在しないIDは結果に含まれない
	FindByEventAndIDs(ctx context.Context, eventID string, ids []string) ([]*EventSeat, error)

	// GetAvailableByEventID は確保可能な座席一覧を取得する
	// 期限切れホールドも available として含む
	GetAvailableByEventID(ctx context.Context, eventID string) ([]*EventSeat, error)

	// CountAvailableByEventID は確保可能な座席数を取得する
	CountAvailableByEventID(ctx context.Context, eventID string) (int, error)

	// HoldSeats は available または期限切れ held の座席を held に遷移させる
	HoldSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string, heldUntil time.Time) (int64, error)

	// BookSeats は有効なホールド中の座席を booked に遷移させ、heldUntil をクリアする
	BookSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string) (int64, error)

	// ReleaseHeldSeats は heldUntil が一致する held の座席だけを available に戻す
	// 他のフローに奪われた座席（再ホールド・booked）には触れない
	ReleaseHeldSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string, heldUntil time.Time) (int64, error)

	// ReleaseSeats は座席を無条件で available に戻す
	// 呼び出し側が booked 行を所有しているキャンセル専用
	ReleaseSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string) (int64, error)

	// ReleaseExpired は期限切れホールド中の座席をまとめて available に戻す
	ReleaseExpired(ctx context.Context) (int64, error)
}
