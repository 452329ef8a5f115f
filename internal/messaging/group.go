package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a topic consumer the group can start and stop.
type Runnable interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs a set of consumers over a shared subscriber with one
// lifecycle: all start or none do, and shutdown stops every consumer before
// closing the subscriber.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates an empty consumer group.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer. Not safe to call after Start.
func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start starts every consumer. When one fails, the ones already running are
// shut down before the error is returned.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	var started []Runnable

	for _, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for _, running := range started {
				_ = running.Shutdown()
			}

			return fmt.Errorf("start consumer for topic %s: %w", consumer.Topic(), err)
		}

		g.logger.Info("consumer started", zap.String("topic", consumer.Topic()))
		started = append(started, consumer)
	}

	return nil
}

// Shutdown stops all consumers and closes the subscriber, returning the first
// error encountered.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	var firstErr error

	for _, consumer := range g.consumers {
		if err := consumer.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := g.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
