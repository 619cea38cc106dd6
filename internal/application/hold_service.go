package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/hold"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-stadium-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/metrics"
)

// HoldService は座席の一時確保を管理する
type HoldService struct {
	txManager     transaction.Manager
	inventoryRepo inventory.Repository
	holdRepo      hold.Repository
	eventRepo     event.Repository
	lockManager   redisinfra.LockManagerInterface
	cache         redisinfra.SeatCacheInterface
	metrics       *metrics.Metrics
}

func NewHoldService(
	tm transaction.Manager,
	ir inventory.Repository,
	hr hold.Repository,
	er event.Repository,
	lm redisinfra.LockManagerInterface,
	cache redisinfra.SeatCacheInterface,
	m *metrics.Metrics,
) *HoldService {
	return &HoldService{
		txManager:     tm,
		inventoryRepo: ir,
		holdRepo:      hr,
		eventRepo:     er,
		lockManager:   lm,
		cache:         cache,
		metrics:       m,
	}
}

type HoldSeatsInput struct {
	EventID string
	UserID  string
	SeatIDs []string
}

// HoldSeats は指定座席をまとめてホールドする
// 全席確保できた場合のみホールドを作成する（部分成功はない）
func (s *HoldService) HoldSeats(ctx context.Context, input HoldSeatsInput) (*HoldResult, error) {
	if input.EventID == "" || input.UserID == "" || len(input.SeatIDs) == 0 {
		s.countHold("invalid")
		return holdFailure(FailureInvalidRequest, "Event id, user id and seat ids are required"), nil
	}

	// 分散ロックを取得（座席IDをソートしてデッドロック防止）
	// 正しさ自体はDBの compare-and-swap が保証するため、ロックは競合削減の最適化
	if s.lockManager != nil {
		lockKey := s.buildSeatLockKey(input.EventID, input.SeatIDs)
		lockStart := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, lockKey, 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			s.observeLock("acquire", "failed", lockStart)
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countHold("lock_failed")
				return holdFailure(FailureConflict, "Seats are being processed by another request"), nil
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		s.observeLock("acquire", "success", lockStart)
		defer lock.Release(ctx)
	}

	// イベント確認
	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			s.countHold("not_found")
			return holdFailure(FailureNotFound, "Event not found"), nil
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	// 1. 要求された座席の在庫レコードを取得し、欠落があればハードフェイル
	records, err := s.inventoryRepo.FindByEventAndIDs(ctx, input.EventID, input.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("座席在庫取得に失敗: %w", err)
	}
	recordMap := make(map[string]*inventory.EventSeat, len(records))
	for _, r := range records {
		recordMap[r.ID] = r
	}
	var missing []string
	for _, id := range input.SeatIDs {
		if _, ok := recordMap[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.countHold("not_found")
		result := holdFailure(FailureNotFound, "Seats not found: "+strings.Join(missing, ", "))
		result.MissingSeats = missing
		return result, nil
	}

	// 2. 確保可能かを判定（期限切れホールドは確保可能として扱う）
	now := time.Now()
	var unavailable []string
	for _, id := range input.SeatIDs {
		if !recordMap[id].IsAvailableAt(now) {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		s.countHold("conflict")
		result := holdFailure(FailureConflict, "Seats not available: "+strings.Join(unavailable, ", "))
		result.UnavailableSeats = unavailable
		return result, nil
	}

	// 3. compare-and-swap で held に遷移し、4. ホールドを作成する
	heldUntil := now.Add(hold.HoldDuration)
	h := hold.NewHold(input.EventID, input.UserID, input.SeatIDs, heldUntil)
	if err := h.Validate(); err != nil {
		s.countHold("invalid")
		return holdFailure(FailureInvalidRequest, err.Error()), nil
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	modified, err := s.inventoryRepo.HoldSeats(ctx, tx, input.EventID, input.SeatIDs, heldUntil)
	if err != nil {
		return nil, err
	}
	if int(modified) != len(input.SeatIDs) {
		// 並行リクエストがレースに勝った。部分的な遷移ごとロールバックする
		s.countHold("conflict")
		return holdFailure(FailureConflict, "Seats were taken by a concurrent request"), nil
	}

	if err := s.holdRepo.Create(ctx, tx, h); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, input.EventID)
	s.countHold("success")
	logger.Info("座席をホールドしました",
		zap.String("hold_id", h.ID),
		zap.String("event_id", input.EventID),
		zap.Int("seats", len(input.SeatIDs)))

	return &HoldResult{
		Success:   true,
		HoldID:    h.ID,
		HeldUntil: heldUntil,
		HeldSeats: input.SeatIDs,
	}, nil
}

// ReleaseHold は未消費のホールドを解放し、座席を available に戻す
// 期限切れのホールドは座席への権利を失っているため、レコードの削除だけを行う
func (s *HoldService) ReleaseHold(ctx context.Context, holdID, userID string) (*HoldResult, error) {
	h, err := s.holdRepo.GetByIDForUser(ctx, holdID, userID)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			return holdFailure(FailureNotFound, "Seat hold expired or not found"), nil
		}
		return nil, fmt.Errorf("ホールド取得に失敗: %w", err)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if !h.IsActiveAt(time.Now()) {
		// 座席は再ホールドや予約で別のフローに渡っている可能性があるため触らない
		// 在庫側の後始末はスイーパーと compare-and-swap に任せる
		if err := s.holdRepo.Delete(ctx, tx, h.ID); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("コミットに失敗: %w", err)
		}
		return holdFailure(FailureNotFound, "Seat hold expired or not found"), nil
	}

	// heldUntil の一致するホールド中の行だけを解放する
	if _, err := s.inventoryRepo.ReleaseHeldSeats(ctx, tx, h.EventID, h.SeatIDs, h.HeldUntil); err != nil {
		return nil, err
	}
	if err := s.holdRepo.Delete(ctx, tx, h.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, h.EventID)
	return &HoldResult{Success: true, HoldID: h.ID, HeldSeats: h.SeatIDs}, nil
}

// ReleaseExpiredHolds は期限切れホールドの座席を解放し、ホールドレコードを削除する
// スイーパーから定期的に呼ばれるが、リクエストフローと並行しても安全
// （遷移は compare-and-swap で保護されている）
func (s *HoldService) ReleaseExpiredHolds(ctx context.Context) (int64, error) {
	released, err := s.inventoryRepo.ReleaseExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("期限切れ座席の解放に失敗: %w", err)
	}

	deleted, err := s.holdRepo.DeleteExpired(ctx)
	if err != nil {
		return released, fmt.Errorf("期限切れホールド削除に失敗: %w", err)
	}

	if released > 0 || deleted > 0 {
		logger.Info("期限切れホールドを解放しました",
			zap.Int64("released_seats", released),
			zap.Int64("deleted_holds", deleted))
	}
	if s.metrics != nil && released > 0 {
		s.metrics.SweptSeatsTotal.Add(float64(released))
	}
	return released, nil
}

// buildSeatLockKey は座席IDからロックキーを生成（ソートしてデッドロック防止）
func (s *HoldService) buildSeatLockKey(eventID string, seatIDs []string) string {
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)
	return "hold:" + eventID + ":" + strings.Join(sorted, ",")
}

func (s *HoldService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *HoldService) countHold(status string) {
	if s.metrics != nil {
		s.metrics.HoldsTotal.WithLabelValues(status).Inc()
	}
}

func (s *HoldService) observeLock(operation, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}
