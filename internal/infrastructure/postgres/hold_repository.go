package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/hold"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

type holdRow struct {
	ID        string         `db:"id"`
	EventID   string         `db:"event_id"`
	UserID    string         `db:"user_id"`
	SeatIDs   pq.StringArray `db:"seat_ids"`
	HeldUntil time.Time      `db:"held_until"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r *holdRow) toEntity() *hold.Hold {
	return &hold.Hold{
		ID: r.ID, EventID: r.EventID, UserID: r.UserID,
		SeatIDs: []string(r.SeatIDs),
		HeldUntil: r.HeldUntil, CreatedAt: r.CreatedAt,
	}
}

type HoldRepository struct{ db *sqlx.DB }

func NewHoldRepository(db *sqlx.DB) *HoldRepository { return &HoldRepository{db: db} }

func (r *HoldRepository) Create(ctx context.Context, tx transaction.Tx, h *hold.Hold) error {
	sqlxTx := UnwrapTx(tx)

	query := `INSERT INTO seat_holds (event_id, user_id, held_until, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, h.EventID, h.UserID, h.HeldUntil, h.CreatedAt).Scan(&h.ID); err != nil {
		return fmt.Errorf("ホールド作成に失敗: %w", err)
	}

	// ホールド対象座席をマルチバリューINSERT
	insert := `INSERT INTO seat_hold_seats (hold_id, event_seat_id) VALUES `
	args := make([]interface{}, 0, len(h.SeatIDs)*2)
	placeholders := make([]string, 0, len(h.SeatIDs))
	for i, seatID := range h.SeatIDs {
		base := i * 2
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, h.ID, seatID)
	}
	insert += strings.Join(placeholders, ", ")
	if _, err := sqlxTx.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("ホールド座席作成に失敗: %w", err)
	}
	return nil
}

func (r *HoldRepository) GetByIDForUser(ctx context.Context, id, userID string) (*hold.Hold, error) {
	query := `SELECT h.id, h.event_id, h.user_id, h.held_until, h.created_at,
		ARRAY_AGG(s.event_seat_id) AS seat_ids
		FROM seat_holds h
		JOIN seat_hold_seats s ON s.hold_id = h.id
		WHERE h.id = $1 AND h.user_id = $2
		GROUP BY h.id, h.event_id, h.user_id, h.held_until, h.created_at`
	var row holdRow
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hold.ErrHoldNotFound
		}
		return nil, fmt.Errorf("ホールド取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *HoldRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	// seat_hold_seats は外部キーの ON DELETE CASCADE で削除される
	if _, err := UnwrapTx(tx).ExecContext(ctx, `DELETE FROM seat_holds WHERE id = $1`, id); err != nil {
		return fmt.Errorf("ホールド削除に失敗: %w", err)
	}
	return nil
}

func (r *HoldRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM seat_holds WHERE held_until < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("期限切れホールド削除に失敗: %w", err)
	}
	return result.RowsAffected()
}

var _ hold.Repository = (*HoldRepository)(nil)
