package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
)

// HoldSweeper は期限切れホールドを解放するインターフェース
type HoldSweeper interface {
	ReleaseExpiredHolds(ctx context.Context) (int64, error)
}

// ExpiredHoldSweeper は期限切れホールドの座席を定期的に回収するワーカー
// 期限判定は読み取り側でも行われるため、スイーパーは即時性ではなく
// ストレージの掃除を担う
type ExpiredHoldSweeper struct {
	holdService HoldSweeper
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewExpiredHoldSweeper は新しいスイーパーを作成
func NewExpiredHoldSweeper(hs HoldSweeper, interval time.Duration) *ExpiredHoldSweeper {
	return &ExpiredHoldSweeper{
		holdService: hs,
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *ExpiredHoldSweeper) Start(ctx context.Context) {
	logger.Info("期限切れホールドスイーパー開始",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れホールドスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れホールドスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *ExpiredHoldSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れホールドの座席を解放
func (s *ExpiredHoldSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れホールドの回収開始")

	count, err := s.holdService.ReleaseExpiredHolds(ctx)
	if err != nil {
		log.Error("期限切れホールドの回収失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れホールドの座席を解放", zap.Int64("count", count))
	} else {
		log.Debug("期限切れホールドなし")
	}
}
