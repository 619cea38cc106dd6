package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/application"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type ConfirmPaymentRequest struct {
	ExternalPaymentID string `json:"external_payment_id" validate:"required" example:"pay_29QQoUBi66xm2f"`

	// 署名検証を行う場合に設定する
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

// Confirm godoc
// @Summary 支払いを確定
// @Description 支払い待ちの予約を確定済みに遷移させます。同じ支払いIDでの再実行は冪等です
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body ConfirmPaymentRequest true "支払い情報"
// @Success 200 {object} CommitResultResponse
// @Failure 400 {object} map[string]string "署名検証失敗"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "支払い待ちでない"
// @Failure 502 {object} map[string]string "決済プロバイダ到達不能"
// @Router /bookings/{id}/payment [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	bookingID := c.Param("id")
	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var result *application.BookingResult
	var err error
	if req.Signature != "" {
		result, err = h.service.VerifyAndConfirm(c.Request().Context(), application.VerifyAndConfirmInput{
			BookingID:         bookingID,
			ExternalPaymentID: req.ExternalPaymentID,
			OrderID:           req.OrderID,
			Signature:         req.Signature,
		})
	} else {
		result, err = h.service.ConfirmPayment(c.Request().Context(), bookingID, req.ExternalPaymentID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー")
	}
	if !result.Success {
		return c.JSON(failureStatus(result.FailureKind), map[string]string{"error": result.Message})
	}
	return c.JSON(http.StatusOK, toCommitResultResponse(result))
}
