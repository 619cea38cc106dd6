package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger は依存先の疎通確認を表す
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	db        Pinger
	startedAt time.Time
}

// NewHealthHandler はHealthHandlerを作成する
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now()}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// Check は生存確認を行う（依存先には触れない）
// @Summary ヘルスチェック
// @Description アプリケーションの健全性を確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startedAt).Truncate(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Ready はデータベース疎通を含む準備状態を返す
// @Summary レディネスチェック
// @Description データベースへ到達できるかを確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
	defer cancel()

	if h.db == nil || h.db.PingContext(ctx) != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "unavailable",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startedAt).Truncate(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
