package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listings-parser/internal/core/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// messagePublisher - то, что адаптеру нужно от rabbitmq_producer.Publisher.
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// SearchEventQueueAdapter реализует SearchEventPublisherPort для RabbitMQ.
type SearchEventQueueAdapter struct {
	producer       messagePublisher
	routingKey     string
	publishTimeout time.Duration
	logger         *zap.Logger
}

// NewSearchEventQueueAdapter создает новый экземпляр адаптера.
func NewSearchEventQueueAdapter(producer messagePublisher, routingKey string, logger *zap.Logger) (*SearchEventQueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchEventQueueAdapter{
		producer:       producer,
		routingKey:     routingKey,
		publishTimeout: 5 * time.Second,
		logger:         logger.With(zap.String("component", "SearchEventQueue")),
	}, nil
}

// Publish отправляет событие поиска в очередь.
func (a *SearchEventQueueAdapter) Publish(ctx context.Context, event domain.SearchEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal search event %s: %w", event.ID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		AppId:        "listings-parser",
	}

	// Публикация не должна задерживать ответ дольше таймаута.
	publishCtx, cancel := context.WithTimeout(ctx, a.publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to publish search event %s: %w", event.ID, err)
	}

	a.logger.Debug("Published search event", zap.String("event_id", event.ID), zap.String("routing_key", a.routingKey))
	return nil
}
