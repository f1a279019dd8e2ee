package events

import (
	"context"
	"encoding/json"
	"time"

	"product-catalog/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes order events to a Kafka topic through a buffered
// channel so request handlers never wait on the broker.
type KafkaPublisher struct {
	writer  *kafka.Writer
	inbox   chan kafka.Message
	closed  chan struct{}
	logger  *zap.Logger
	timeout time.Duration
}

// NewKafkaPublisher builds a publisher for the given brokers and topic and
// starts its delivery loop. Call Close to flush and stop it.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, 256),
		closed:  make(chan struct{}),
		logger:  logger,
		timeout: 10 * time.Second,
	}

	go p.deliver()
	return p
}

func (p *KafkaPublisher) deliver() {
	defer close(p.closed)

	for msg := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Error("Failed to publish order event",
				zap.Error(err),
				zap.String("topic", p.writer.Topic),
			)
		}
		cancel()
	}

	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close kafka writer", zap.Error(err))
	}
}

// OrderCreated enqueues an OrderCreated envelope keyed by order id. Events are
// dropped with a log line when the buffer is full; placement must not block.
func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *domain.Order) {
	env, err := NewOrderCreatedEnvelope(order)
	if err != nil {
		p.logger.Error("Failed to build order event", zap.Error(err))
		return
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("Failed to encode order event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: value,
		Time:  time.Now(),
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn("Order event buffer full; dropping event",
			zap.String("order_id", order.ID.String()),
		)
	}
}

// Close stops the delivery loop after flushing buffered events.
func (p *KafkaPublisher) Close() {
	close(p.inbox)
	<-p.closed
}
