package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidPost indicates a nil post or a post without an ID or title.
	ErrInvalidPost = errors.New("invalid post data")

	// ErrNotificationDropped indicates that a notification was dropped because
	// no worker slot became free in time.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")

	// ErrShuttingDown is returned by NotifyNewPost after Shutdown was called.
	ErrShuttingDown = errors.New("notification service is shutting down")
)
