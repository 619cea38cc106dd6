package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-stadium-ticket-booking/internal/pkg/logger"
)

const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

// BookingConfirmedEvent は予約確定イベント
type BookingConfirmedEvent struct {
	BookingID   string    `json:"booking_id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	SeatIDs     []string  `json:"seat_ids"`
	TotalAmount int       `json:"total_amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// BookingCancelledEvent は予約キャンセルイベント
// RefundRequired が true の場合、下流の返金プロセスが処理する
type BookingCancelledEvent struct {
	BookingID      string    `json:"booking_id"`
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	SeatIDs        []string  `json:"seat_ids"`
	RefundRequired bool      `json:"refund_required"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// EventPublisher は予約イベントの発行インターフェース
// サービス層のテストでモックに差し替えるために定義する
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
	PublishBookingCancelled(ctx context.Context, event BookingCancelledEvent) error
	Close() error
}

// Publisher はRabbitMQへ予約イベントを発行する
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher はRabbitMQに接続し、キューを宣言する
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗しました: %w", err)
	}

	// durable なキューを宣言（冪等）
	for _, name := range []string{QueueBookingConfirmed, QueueBookingCancelled} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("キュー宣言に失敗しました: %w", err)
		}
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

// PublishBookingConfirmed は予約確定イベントを発行する
// 発行失敗はログに記録して返すだけで、呼び出し側のフローは止めない
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	return p.publish(ctx, QueueBookingConfirmed, event)
}

// PublishBookingCancelled は予約キャンセルイベントを発行する
func (p *Publisher) PublishBookingCancelled(ctx context.Context, event BookingCancelledEvent) error {
	return p.publish(ctx, QueueBookingCancelled, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("イベントのシリアライズに失敗",
			zap.String("queue", queueName),
			zap.Error(err))
		return err
	}

	err = p.ch.PublishWithContext(ctx,
		"",        // デフォルトエクスチェンジ
		queueName, // ルーティングキー = キュー名
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		logger.Error("イベント発行に失敗",
			zap.String("queue", queueName),
			zap.Error(err))
		return err
	}
	return nil
}

// Close は接続を閉じる
func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ EventPublisher = (*Publisher)(nil)
