package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	EventID     string    `db:"event_id"`
	TotalAmount int       `db:"total_amount"`
	Status      string    `db:"status"`
	PaymentID   *string   `db:"payment_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type bookingSeatRow struct {
	BookingID   string `db:"booking_id"`
	EventSeatID string `db:"event_seat_id"`
	Price       int    `db:"price"`
}

func (r *bookingRow) toEntity(seats []booking.BookedSeat) *booking.Booking {
	return &booking.Booking{
		ID: r.ID, UserID: r.UserID, EventID: r.EventID,
		Seats: seats, TotalAmount: r.TotalAmount,
		Status: booking.Status(r.Status), PaymentID: r.PaymentID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository { return &BookingRepository{db: db} }

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)

	query := `INSERT INTO bookings (user_id, event_id, total_amount, status, payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		b.UserID, b.EventID, b.TotalAmount, string(b.Status), b.PaymentID, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}

	// 確定時点の座席価格スナップショットを保存する
	insert := `INSERT INTO booking_seats (booking_id, event_seat_id, price) VALUES `
	args := make([]interface{}, 0, len(b.Seats)*3)
	placeholders := make([]string, 0, len(b.Seats))
	for i, s := range b.Seats {
		base := i * 3
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, b.ID, s.SeatID, s.Price)
	}
	insert += strings.Join(placeholders, ", ")
	if _, err := sqlxTx.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("予約座席作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT id, user_id, event_id, total_amount, status, payment_id, created_at, updated_at
		FROM bookings WHERE id = $1`
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}

	seats, err := r.getSeats(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return row.toEntity(seats[id]), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	query := `SELECT id, user_id, event_id, total_amount, status, payment_id, created_at, updated_at
		FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	seats, err := r.getSeats(ctx, ids)
	if err != nil {
		return nil, err
	}

	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity(seats[row.ID])
	}
	return bookings, nil
}

// getSeats は複数予約分の座席スナップショットをまとめて取得する
func (r *BookingRepository) getSeats(ctx context.Context, bookingIDs []string) (map[string][]booking.BookedSeat, error) {
	query, args, err := sqlx.In(
		`SELECT booking_id, event_seat_id, price FROM booking_seats WHERE booking_id IN (?) ORDER BY event_seat_id`,
		bookingIDs,
	)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var rows []bookingSeatRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約座席取得に失敗: %w", err)
	}

	result := make(map[string][]booking.BookedSeat, len(bookingIDs))
	for _, row := range rows {
		result[row.BookingID] = append(result[row.BookingID], booking.BookedSeat{
			SeatID: row.EventSeatID,
			Price:  row.Price,
		})
	}
	return result, nil
}

func (r *BookingRepository) ConfirmPayment(ctx context.Context, tx transaction.Tx, id, paymentID string) (int64, error) {
	// pending_payment の場合のみ更新する。0件のときの分類は呼び出し側が行う
	query := `UPDATE bookings SET status = 'confirmed', payment_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending_payment'`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, paymentID, id)
	if err != nil {
		return 0, fmt.Errorf("支払い確定に失敗: %w", err)
	}
	return result.RowsAffected()
}

func (r *BookingRepository) Cancel(ctx context.Context, tx transaction.Tx, id string) (int64, error) {
	// キャンセル可能な状態の場合のみ更新する。並行する支払い確定との競合は
	// この条件と ConfirmPayment 側の条件の組で直列化される
	query := `UPDATE bookings SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending_payment', 'confirmed')`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("予約キャンセルに失敗: %w", err)
	}
	return result.RowsAffected()
}

var _ booking.Repository = (*BookingRepository)(nil)
