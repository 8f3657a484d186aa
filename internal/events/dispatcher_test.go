package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/domain"
)

func TestInMemoryDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("smtp down")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventLeadConverted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	event, err := NewEvent(EventTicketCreated, "ticket-1", nil, TicketCreatedPayload{TicketNumber: "TKT-00001"})
	require.NoError(t, err)

	err = d.Publish(context.Background(), event)

	assert.ErrorContains(t, err, "smtp down")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEvent_DecodePayload(t *testing.T) {
	event, err := NewEvent(EventTicketStatusChanged, "ticket-1", nil, TicketStatusChangedPayload{
		TicketNumber: "TKT-00007",
		OldStatus:    domain.TicketStatusOpen,
		NewStatus:    domain.TicketStatusClosed,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)

	var payload TicketStatusChangedPayload
	require.NoError(t, event.Decode(&payload))
	assert.Equal(t, domain.TicketStatusClosed, payload.NewStatus)
}

// listRedis implements the two list commands the dispatcher uses.
type listRedis struct {
	redis.UniversalClient
	mu    sync.Mutex
	items []string
}

func (r *listRedis) RPush(ctx context.Context, _ string, values ...interface{}) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		r.items = append(r.items, string(v.([]byte)))
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(r.items)))
	return cmd
}

func (r *listRedis) BLPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	head := r.items[0]
	r.items = r.items[1:]
	cmd.SetVal([]string{keys[0], head})
	return cmd
}

func TestRedisDispatcher_PublishThenRunDelivers(t *testing.T) {
	client := &listRedis{}
	d := NewRedisDispatcher(client, "events", zap.NewNop())

	delivered := make(chan Event, 1)
	d.Subscribe(EventBookingSubmitted, func(_ context.Context, e Event) error {
		delivered <- e
		return nil
	})

	event, err := NewEvent(EventBookingSubmitted, "lead-1", nil, BookingSubmittedPayload{Score: 95, Tier: domain.LeadTierHot})
	require.NoError(t, err)
	require.NoError(t, d.Publish(context.Background(), event))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	select {
	case got := <-delivered:
		assert.Equal(t, event.ID, got.ID)
		var payload BookingSubmittedPayload
		require.NoError(t, got.Decode(&payload))
		assert.Equal(t, 95, payload.Score)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	<-done
}
