// Package notify dispatches new post announcements to the configured chat
// channels. Dispatch is asynchronous, bounded by a worker pool and guarded
// by a circuit breaker per channel.
package notify

import (
	"context"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/infra/notifier"
)

// Channel is one notification destination.
//
// Implementations must be safe for concurrent use and must respect ctx
// cancellation. Rate limiting and webhook retries are the channel's concern.
type Channel interface {
	// Name is the lowercase identifier used in logs, metrics and health.
	Name() string

	IsEnabled() bool

	// Send delivers one notification. It returns ErrChannelDisabled on a
	// disabled channel and ErrInvalidPost for a nil or incomplete post.
	Send(ctx context.Context, post *entity.Post) error
}

// notifierChannel adapts an infra notifier to Channel.
type notifierChannel struct {
	name     string
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordChannel creates the Discord channel. A disabled config is backed
// by a no-op notifier.
func NewDiscordChannel(config notifier.DiscordConfig) Channel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return NewChannel("discord", n, config.Enabled)
}

// NewSlackChannel creates the Slack channel. A disabled config is backed by a
// no-op notifier.
func NewSlackChannel(config notifier.SlackConfig) Channel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return NewChannel("slack", n, config.Enabled)
}

// NewChannel wraps any notifier as a named channel.
func NewChannel(name string, n notifier.Notifier, enabled bool) Channel {
	return &notifierChannel{name: name, notifier: n, enabled: enabled}
}

func (c *notifierChannel) Name() string { return c.name }

func (c *notifierChannel) IsEnabled() bool { return c.enabled }

func (c *notifierChannel) Send(ctx context.Context, post *entity.Post) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if post == nil || post.ID == 0 || post.Title == "" {
		return ErrInvalidPost
	}
	return c.notifier.NotifyPost(ctx, post)
}
