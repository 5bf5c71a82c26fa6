// Package notify pushes store changes to outside channels: Slack for
// approvals and noisy activities, Kafka for the full activity audit trail.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/store"
)

type messagePoster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier announces new pending approvals and warn/error activities
// to a Slack channel.
type SlackNotifier struct {
	poster  messagePoster
	channel string
	store   *store.Store
	log     *slog.Logger
}

// NewSlackNotifier returns nil when token or channel are unset, which
// disables Slack notifications entirely.
func NewSlackNotifier(token, channel string, st *store.Store) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		poster:  slack.New(token),
		channel: channel,
		store:   st,
		log:     slog.Default().With("component", "slack-notify"),
	}
}

// Run consumes bus changes until ctx is done. Post failures are logged
// and dropped: notifications are best-effort.
func (n *SlackNotifier) Run(ctx context.Context, b *bus.ChangeBus) {
	ch, cancel := b.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if msg := n.render(change); msg != "" {
				if _, _, err := n.poster.PostMessage(n.channel, slack.MsgOptionText(msg, false)); err != nil {
					n.log.Warn("slack post failed", "error", err)
				}
			}
		}
	}
}

// render maps a change to a notification message, or "" to stay quiet.
func (n *SlackNotifier) render(change bus.Change) string {
	if change.Op != bus.OpInsert {
		return ""
	}
	switch change.Collection {
	case store.CollectionApprovals:
		a, err := n.store.GetApproval(change.ID)
		if err != nil {
			return ""
		}
		if a.Status != store.ApprovalPending {
			return ""
		}
		if a.Source != "" {
			return fmt.Sprintf(":hourglass: approval pending: %s (from %s)", a.Title, a.Source)
		}
		return ":hourglass: approval pending: " + a.Title
	case store.CollectionActivities:
		a, err := n.store.GetActivity(change.ID)
		if err != nil {
			return ""
		}
		switch a.Level {
		case store.LevelWarn:
			return fmt.Sprintf(":warning: [%s] %s", a.Type, a.Message)
		case store.LevelError:
			return fmt.Sprintf(":rotating_light: [%s] %s", a.Type, a.Message)
		}
	}
	return ""
}
