package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	pkgkafka "MarketPulse/pkg/kafka"
)

// SignalPublisher pushes normalized signals onto the Kafka bus so other
// systems can consume the stream without querying the store.
type SignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewSignalPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &SignalPublisher{producer: producer, topic: topic}
}

func (p *SignalPublisher) PublishSignals(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(signals))
	for i, s := range signals {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(s.ID),
			Value: s,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// PublishMessage sends an arbitrary payload to a topic. Satisfies
// logger.Publisher so aggregated error logs can ride the same bus.
func (p *SignalPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *SignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher is used when the bus is disabled in config.
type NopPublisher struct{}

func (NopPublisher) PublishSignals(context.Context, []*models.Signal) error { return nil }
func (NopPublisher) Close() error                                           { return nil }
