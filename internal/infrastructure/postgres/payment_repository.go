package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
)

type paymentRow struct {
	ID                string    `db:"id"`
	BookingID         string    `db:"booking_id"`
	ExternalPaymentID string    `db:"external_payment_id"`
	Amount            int       `db:"amount"`
	Currency          string    `db:"currency"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID: r.ID, BookingID: r.BookingID, ExternalPaymentID: r.ExternalPaymentID,
		Amount: r.Amount, Currency: r.Currency,
		Status: payment.Status(r.Status), CreatedAt: r.CreatedAt,
	}
}

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	query := `INSERT INTO payments (booking_id, external_payment_id, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := UnwrapTx(tx).QueryRowContext(ctx, query,
		p.BookingID, p.ExternalPaymentID, p.Amount, p.Currency, string(p.Status), p.CreatedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("支払いレコード作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*payment.Payment, error) {
	query := `SELECT id, booking_id, external_payment_id, amount, currency, status, created_at
		FROM payments WHERE booking_id = $1`
	var row paymentRow
	if err := r.db.GetContext(ctx, &row, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払いレコード取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) MarkRefundInitiated(ctx context.Context, tx transaction.Tx, bookingID string) (int64, error) {
	// 同一トランザクション内で予約IDから直接引く
	// 事前読み取りに依存しないため、並行する支払い確定を取りこぼさない
	query := `UPDATE payments SET status = 'refund_initiated' WHERE booking_id = $1 AND status = 'captured'`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, bookingID)
	if err != nil {
		return 0, fmt.Errorf("返金開始の記録に失敗: %w", err)
	}
	return result.RowsAffected()
}

var _ payment.Repository = (*PaymentRepository)(nil)
