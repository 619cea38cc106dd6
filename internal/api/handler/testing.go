package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/api"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
// バリデータとエラーハンドラを本番構成と同じものに揃える
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}
