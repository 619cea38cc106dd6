package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
)

type eventRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	StadiumID   string    `db:"stadium_id"`
	Description string    `db:"description"`
	StartAt     time.Time `db:"start_at"`
	EndAt       time.Time `db:"end_at"`
	BasePrice   int       `db:"base_price"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Version     int       `db:"version"`
}

func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID: r.ID, Name: r.Name, StadiumID: r.StadiumID, Description: r.Description,
		StartAt: r.StartAt, EndAt: r.EndAt, BasePrice: r.BasePrice,
		Status: event.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type EventRepository struct{ db *sqlx.DB }

func NewEventRepository(db *sqlx.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `INSERT INTO events (name, stadium_id, description, start_at, end_at, base_price, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		e.Name, e.StadiumID, e.Description, e.StartAt, e.EndAt, e.BasePrice,
		string(e.Status), e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID); err != nil {
		return fmt.Errorf("イベント作成に失敗: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT id, name, stadium_id, description, start_at, end_at, base_price, status, created_at, updated_at, version
		FROM events WHERE id = $1`
	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `SELECT id, name, stadium_id, description, start_at, end_at, base_price, status, created_at, updated_at, version
		FROM events ORDER BY start_at LIMIT $1 OFFSET $2`
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗: %w", err)
	}
	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

var _ event.Repository = (*EventRepository)(nil)
