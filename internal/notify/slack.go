package notify

import (
	"context"

	"github.com/slack-go/slack"
)

// ChatNotifier posts short messages to the team channel.
type ChatNotifier interface {
	Notify(ctx context.Context, text string) error
}

// webhookPoster abstracts the Slack call so tests can capture messages.
type webhookPoster func(ctx context.Context, url string, msg *slack.WebhookMessage) error

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	url  string
	post webhookPoster
}

// NewSlackNotifier returns nil when url is empty; callers treat a nil
// notifier as disabled.
func NewSlackNotifier(url string) ChatNotifier {
	if url == "" {
		return nil
	}
	return &SlackNotifier{url: url, post: slack.PostWebhookContext}
}

func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	return s.post(ctx, s.url, &slack.WebhookMessage{Text: text})
}
