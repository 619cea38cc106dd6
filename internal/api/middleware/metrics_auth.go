package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// MetricsTokenAuth は /metrics エンドポイント用の Bearer トークン認証ミドルウェア
// トークンが未設定の場合は認証をスキップ（ローカル開発用）
func MetricsTokenAuth(expectedToken string) echo.MiddlewareFunc {
	if expectedToken == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
			}

			// タイミング攻撃を防ぐため ConstantTimeCompare を使用
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証に失敗しました")
			}
			return next(c)
		}
	}
}
