package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPopTimeout = 5 * time.Second

// RedisDispatcher queues events on a Redis list. Publish pushes to the
// tail; Run pops from the head and hands each event to the subscribed
// handlers, so delivery happens outside the request that produced it.
type RedisDispatcher struct {
	*registry
	client     redis.UniversalClient
	queue      string
	logger     *zap.Logger
	popTimeout time.Duration
}

// NewRedisDispatcher builds a dispatcher over the given list key.
func NewRedisDispatcher(client redis.UniversalClient, queue string, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		registry:   newRegistry(),
		client:     client,
		queue:      queue,
		logger:     logger,
		popTimeout: defaultPopTimeout,
	}
}

// Publish enqueues the event.
func (d *RedisDispatcher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := d.client.RPush(ctx, d.queue, data).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", event.Type, err)
	}
	return nil
}

// Run consumes the queue until ctx is cancelled.
func (d *RedisDispatcher) Run(ctx context.Context) error {
	d.logger.Info("event consumer started", zap.String("queue", d.queue))
	for {
		if err := ctx.Err(); err != nil {
			d.logger.Info("event consumer stopped")
			return nil
		}

		event, err := d.pop(ctx)
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case ctx.Err() != nil:
			continue
		case err != nil:
			d.logger.Warn("event pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		if err := d.dispatch(ctx, event); err != nil {
			d.logger.Error("event handler failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

func (d *RedisDispatcher) pop(ctx context.Context) (Event, error) {
	result, err := d.client.BLPop(ctx, d.popTimeout, d.queue).Result()
	if err != nil {
		return Event{}, err
	}
	// BLPOP replies with [key, value].
	if len(result) != 2 {
		return Event{}, fmt.Errorf("unexpected BLPOP reply of %d elements", len(result))
	}
	var event Event
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}
