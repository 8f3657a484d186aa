package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/service"
)

type chatRecorder struct {
	messages chan string
}

func (c *chatRecorder) Notify(_ context.Context, text string) error {
	c.messages <- text
	return nil
}

// replayConsumer feeds queued events to the dispatcher, then waits for
// cancellation like the Redis consumer does.
type replayConsumer struct {
	dispatcher *events.InMemoryDispatcher
	queue      []events.Event
}

func (r *replayConsumer) Run(ctx context.Context) error {
	for _, event := range r.queue {
		_ = r.dispatcher.Publish(ctx, event)
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestStartNotificationWorker_DeliversAndStops(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	chat := &chatRecorder{messages: make(chan string, 1)}
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Chat:       chat,
	})
	event, err := events.NewEvent(events.EventLeadConverted, "lead-1", nil, events.LeadConvertedPayload{CompanyName: "Acme"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartNotificationWorker(ctx, notifications, &replayConsumer{dispatcher: dispatcher, queue: []events.Event{event}}, zap.NewNop())

	select {
	case msg := <-chat.messages:
		assert.Contains(t, msg, "Acme is now a client")
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStartNotificationWorker_NoConsumer(t *testing.T) {
	done := StartNotificationWorker(context.Background(), nil, nil, zap.NewNop())

	_, open := <-done
	assert.False(t, open)
}
