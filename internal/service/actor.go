package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/events"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// IsStaff reports whether the actor belongs to the internal team.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func (a Actor) ref() *string {
	if a.ID == "" {
		return nil
	}
	id := a.ID
	return &id
}

// publishEvent hands an event to the queue after the write committed.
// Failures are logged and never surface to the caller.
func publishEvent(ctx context.Context, publisher events.Publisher, logger *zap.Logger, eventType events.EventType, subjectID string, actor *string, payload any) {
	if publisher == nil {
		return
	}
	event, err := events.NewEvent(eventType, subjectID, actor, payload)
	if err == nil {
		err = publisher.Publish(ctx, event)
	}
	if err != nil {
		logger.Warn("publish event failed",
			zap.String("event_type", string(eventType)),
			zap.String("subject_id", subjectID),
			zap.Error(err))
	}
}

func strPtr(s string) *string {
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
