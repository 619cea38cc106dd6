package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

type eventSeatRow struct {
	ID           string     `db:"id"`
	EventID      string     `db:"event_id"`
	SeatID       string     `db:"seat_id"`
	Status       string     `db:"status"`
	CurrentPrice int        `db:"current_price"`
	HeldUntil    *time.Time `db:"held_until"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	Version      int        `db:"version"`
}

func (r *eventSeatRow) toEntity() *inventory.EventSeat {
	return &inventory.EventSeat{
		ID: r.ID, EventID: r.EventID, SeatID: r.SeatID,
		Status: inventory.Status(r.Status), CurrentPrice: r.CurrentPrice,
		HeldUntil: r.HeldUntil,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type InventoryRepository struct{ db *sqlx.DB }

func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) CreateBulk(ctx context.Context, seats []*inventory.EventSeat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// createBulkBatch はバッチ単位でマルチバリューINSERTを実行
func (r *InventoryRepository) createBulkBatch(ctx context.Context, seats []*inventory.EventSeat) error {
	query := `INSERT INTO event_seats (event_id, seat_id, status, current_price, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(seats)*7)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, s.EventID, s.SeatID, string(s.Status), s.CurrentPrice, s.CreatedAt, s.UpdatedAt, s.Version)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席在庫一括作成に失敗: %w", err)
	}
	return nil
}

func (r *InventoryRepository) FindByEventAndIDs(ctx context.Context, eventID string, ids []string) ([]*inventory.EventSeat, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, event_id, seat_id, status, current_price, held_until, created_at, updated_at, version
		FROM event_seats WHERE event_id = $1 AND id = ANY($2)`
	var rows []eventSeatRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("座席在庫取得に失敗: %w", err)
	}
	seats := make([]*inventory.EventSeat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *InventoryRepository) GetAvailableByEventID(ctx context.Context, eventID string) ([]*inventory.EventSeat, error) {
	// 期限切れのホールドも確保可能として扱う
	query := `SELECT id, event_id, seat_id, status, current_price, held_until, created_at, updated_at, version
		FROM event_seats
		WHERE event_id = $1 AND (status = 'available' OR (status = 'held' AND held_until < NOW()))
		ORDER BY seat_id`
	var rows []eventSeatRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, err
	}
	seats := make([]*inventory.EventSeat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *InventoryRepository) CountAvailableByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM event_seats
		WHERE event_id = $1 AND (status = 'available' OR (status = 'held' AND held_until < NOW()))`
	err := r.db.GetContext(ctx, &count, query, eventID)
	return count, err
}

func (r *InventoryRepository) HoldSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string, heldUntil time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// 期限切れのホールドは available と同等に奪取できる
	query := `UPDATE event_seats
		SET status = 'held', held_until = $1, updated_at = NOW(), version = version + 1
		WHERE event_id = $2 AND id = ANY($3)
		AND (status = 'available' OR (status = 'held' AND held_until < NOW()))`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, heldUntil, eventID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("座席ホールドに失敗: %w", err)
	}
	return result.RowsAffected()
}

func (r *InventoryRepository) BookSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// 有効なホールド中の座席だけが booked に遷移できる
	query := `UPDATE event_seats
		SET status = 'booked', held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE event_id = $1 AND id = ANY($2)
		AND status = 'held' AND held_until >= NOW()`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, eventID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("座席確定に失敗: %w", err)
	}
	return result.RowsAffected()
}

func (r *InventoryRepository) ReleaseHeldSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string, heldUntil time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// held_until の一致で自ホールドの行だけを解放する
	// 再ホールドや booked に遷移済みの行は条件に合わず残る
	query := `UPDATE event_seats
		SET status = 'available', held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE event_id = $1 AND id = ANY($2)
		AND status = 'held' AND held_until = $3`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, eventID, pq.Array(ids), heldUntil)
	if err != nil {
		return 0, fmt.Errorf("ホールド座席の解放に失敗: %w", err)
	}
	return result.RowsAffected()
}

func (r *InventoryRepository) ReleaseSeats(ctx context.Context, tx transaction.Tx, eventID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// 無条件更新。booked 行を所有するキャンセルフローからのみ呼ばれる
	query := `UPDATE event_seats
		SET status = 'available', held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE event_id = $1 AND id = ANY($2)`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, eventID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("座席解放に失敗: %w", err)
	}
	return result.RowsAffected()
}

func (r *InventoryRepository) ReleaseExpired(ctx context.Context) (int64, error) {
	query := `UPDATE event_seats
		SET status = 'available', held_until = NULL, updated_at = NOW(), version = version + 1
		WHERE status = 'held' AND held_until < NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("期限切れ座席の解放に失敗: %w", err)
	}
	return result.RowsAffected()
}

var _ inventory.Repository = (*InventoryRepository)(nil)
