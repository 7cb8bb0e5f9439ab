// Package notifier delivers new post announcements to chat webhooks.
//
// The package includes Discord and Slack webhook implementations and a no-op
// notifier for when notifications are disabled. Each webhook applies its own
// token bucket and retries transient failures; dispatching and circuit
// breaking live in usecase/notify.
package notifier

import (
	"context"

	"trendscribe/internal/domain/entity"
)

// Notifier sends a notification about a newly stored post.
// Implementations must respect ctx cancellation.
type Notifier interface {
	NotifyPost(ctx context.Context, post *entity.Post) error
}

// NoOpNotifier backs a disabled channel.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier { return &NoOpNotifier{} }

func (*NoOpNotifier) NotifyPost(context.Context, *entity.Post) error { return nil }
