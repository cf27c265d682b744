package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/BaSui01/medidash/config"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// =============================================================================
// 🐇 AMQP 发布器
// =============================================================================

// AMQPPublisher 向 topic 交换机发布持久化 JSON 消息
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewAMQPPublisher 建立连接并声明交换机
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger.Info("event publisher connected", zap.String("exchange", exchange))

	return &AMQPPublisher{
		conn:     conn,
		exchange: exchange,
		logger:   logger.With(zap.String("component", "events")),
	}, nil
}

// Publish 以事件类型为路由键发布
func (p *AMQPPublisher) Publish(ctx context.Context, env Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open amqp channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msgID := env.Meta.ID
	if msgID == "" {
		msgID = uuid.NewString()
	}

	err = ch.PublishWithContext(ctx, p.exchange, env.Meta.Type, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msgID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     time.Now(),
		Type:          env.Meta.Type,
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", env.Meta.Type, err)
	}

	p.logger.Debug("event published", zap.String("type", env.Meta.Type), zap.String("id", msgID))
	return nil
}

// Close 关闭连接
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

// =============================================================================
// 🔇 空发布器
// =============================================================================

// Nop 丢弃所有事件
type Nop struct{}

// Publish 丢弃事件
func (Nop) Publish(context.Context, Envelope) error { return nil }

// Close 无操作
func (Nop) Close() error { return nil }

// NewFromConfig URL 为空时返回 Nop
func NewFromConfig(cfg config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return Nop{}, nil
	}
	return NewAMQPPublisher(cfg.URL, cfg.Exchange, logger)
}

// PublishAsync 在后台发布事件，失败只记录日志
func PublishAsync(p Publisher, env Envelope, logger *zap.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, env); err != nil {
			logger.Warn("event publish failed",
				zap.String("type", env.Meta.Type),
				zap.Error(err),
			)
		}
	}()
}
