package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/stadium"
	redisinfra "github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
)

const (
	seatCountCacheTTL = 30 * time.Second
)

// InventoryService は座席在庫の参照と初期化を提供する
type InventoryService struct {
	inventoryRepo inventory.Repository
	eventRepo     event.Repository
	stadiumRepo   stadium.Repository
	cache         redisinfra.SeatCacheInterface
}

func NewInventoryService(
	ir inventory.Repository,
	er event.Repository,
	sr stadium.Repository,
	cache redisinfra.SeatCacheInterface,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: ir,
		eventRepo:     er,
		stadiumRepo:   sr,
		cache:         cache,
	}
}

// AvailableSeat は空席とその所在・価格情報を表す
type AvailableSeat struct {
	ID         string
	SeatNumber string
	Tier       stadium.SeatTier
	Section    string
	Row        string
	Price      int
}

// InitializeEventSeats はスタジアムの全座席に対して在庫レコードを作成する
// 価格は基準価格に等級倍率を掛けた値で固定し、以後再計算しない
func (s *InventoryService) InitializeEventSeats(ctx context.Context, eventID string) (int, error) {
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	st, err := s.stadiumRepo.GetByID(ctx, ev.StadiumID)
	if err != nil {
		return 0, fmt.Errorf("スタジアム取得に失敗: %w", err)
	}

	details := st.AllSeats()
	seats := make([]*inventory.EventSeat, 0, len(details))
	for _, d := range details {
		es := inventory.NewEventSeat(eventID, d.Seat.ID, d.Seat.Tier.PriceFor(ev.BasePrice))
		if err := es.Validate(); err != nil {
			return 0, err
		}
		seats = append(seats, es)
	}
	if err := s.inventoryRepo.CreateBulk(ctx, seats); err != nil {
		return 0, err
	}

	logger.Info("座席在庫を初期化しました",
		zap.String("event_id", eventID),
		zap.Int("seats", len(seats)))
	return len(seats), nil
}

// GetAvailableSeats は確保可能な座席を所在情報付きで返す
// 期限切れホールドの座席も含まれる
func (s *InventoryService) GetAvailableSeats(ctx context.Context, eventID string) ([]*AvailableSeat, error) {
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	st, err := s.stadiumRepo.GetByID(ctx, ev.StadiumID)
	if err != nil {
		return nil, fmt.Errorf("スタジアム取得に失敗: %w", err)
	}

	records, err := s.inventoryRepo.GetAvailableByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	detailMap := st.SeatDetailMap()
	seats := make([]*AvailableSeat, 0, len(records))
	for _, r := range records {
		as := &AvailableSeat{ID: r.ID, Price: r.CurrentPrice}
		if d, ok := detailMap[r.SeatID]; ok {
			as.SeatNumber = d.Seat.Number
			as.Tier = d.Seat.Tier
			as.Section = d.Section
			as.Row = d.Row
		}
		seats = append(seats, as)
	}
	return seats, nil
}

// CheckSeatAvailability は指定座席それぞれの確保可否を返す
// 存在しない座席IDは結果に含まれない
func (s *InventoryService) CheckSeatAvailability(ctx context.Context, eventID string, seatIDs []string) (map[string]bool, error) {
	records, err := s.inventoryRepo.FindByEventAndIDs(ctx, eventID, seatIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make(map[string]bool, len(records))
	for _, r := range records {
		result[r.ID] = r.IsAvailableAt(now)
	}
	return result, nil
}

// CountAvailableSeats は確保可能な座席数を返す（キャッシュあり）
func (s *InventoryService) CountAvailableSeats(ctx context.Context, eventID string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, eventID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("event_id", eventID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	count, err := s.inventoryRepo.CountAvailableByEventID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, eventID, count, seatCountCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}
