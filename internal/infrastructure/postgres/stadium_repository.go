package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
)

type stadiumRow struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Location  string          `db:"location"`
	Capacity  int             `db:"capacity"`
	Sections  json.RawMessage `db:"sections"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r *stadiumRow) toEntity() (*stadium.Stadium, error) {
	var sections []stadium.Section
	if err := json.Unmarshal(r.Sections, &sections); err != nil {
		return nil, fmt.Errorf("セクションの復元に失敗: %w", err)
	}
	return &stadium.Stadium{
		ID: r.ID, Name: r.Name, Location: r.Location, Capacity: r.Capacity,
		Sections:  sections,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

type StadiumRepository struct{ db *sqlx.DB }

func NewStadiumRepository(db *sqlx.DB) *StadiumRepository { return &StadiumRepository{db: db} }

func (r *StadiumRepository) Create(ctx context.Context, s *stadium.Stadium) error {
	// 座席トポロジーはJSONBにそのまま格納する
	sections, err := json.Marshal(s.Sections)
	if err != nil {
		return fmt.Errorf("セクションのシリアライズに失敗: %w", err)
	}

	query := `INSERT INTO stadiums (name, location, capacity, sections, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		s.Name, s.Location, s.Capacity, sections, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("スタジアム作成に失敗: %w", err)
	}
	return nil
}

func (r *StadiumRepository) GetByID(ctx context.Context, id string) (*stadium.Stadium, error) {
	query := `SELECT id, name, location, capacity, sections, created_at, updated_at FROM stadiums WHERE id = $1`
	var row stadiumRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stadium.ErrStadiumNotFound
		}
		return nil, fmt.Errorf("スタジアム取得に失敗: %w", err)
	}
	return row.toEntity()
}

var _ stadium.Repository = (*StadiumRepository)(nil)
