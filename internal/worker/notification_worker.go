package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/service"
)

// EventConsumer drains the event queue until ctx is cancelled.
type EventConsumer interface {
	Run(ctx context.Context) error
}

// StartNotificationWorker registers notification handlers and consumes the
// queue in the background. The returned channel closes when the consumer
// has stopped.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, consumer EventConsumer, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if notificationService == nil || consumer == nil {
		close(done)
		return done
	}
	notificationService.RegisterHandlers()

	go func() {
		defer close(done)
		logger.Info("notification worker started")
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification worker stopped", zap.Error(err))
			return
		}
		logger.Info("notification worker stopped")
	}()
	return done
}
