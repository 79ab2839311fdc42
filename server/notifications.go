package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"

	"github.com/wego-social/wego-tools/server/database"
)

// NewNotifier creates a moderation notifier. When notifications are disabled
// the notifier is a no-op.
func NewNotifier(cfg NotificationsConfig) (*Notifier, error) {
	n := &Notifier{cfg: cfg}
	if !cfg.Enabled {
		return n, nil
	}

	client, err := webhook.NewWithURL(cfg.WebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook client: %w", err)
	}
	n.client = client

	return n, nil
}

// Notifier posts moderation alerts to the configured Discord webhook.
type Notifier struct {
	cfg    NotificationsConfig
	client *webhook.Client
}

func (n *Notifier) Send(ctx context.Context, message string) {
	if n.client == nil {
		return
	}

	if _, err := n.client.CreateContent(message, rest.WithCtx(ctx)); err != nil {
		slog.ErrorContext(ctx, "failed to send notification", slog.Any("err", err))
	}
}

// NotifyReport alerts moderators about a newly submitted report.
func (n *Notifier) NotifyReport(ctx context.Context, report database.Report, activityTitle string) {
	if activityTitle == "" {
		activityTitle = report.ActivityID
	}
	n.Send(ctx, fmt.Sprintf("New report for activity `%s` (reason: %s) by `%s`", activityTitle, report.Reason, report.ReporterID))
}
