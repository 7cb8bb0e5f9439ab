// Package generate provides the scheduled generation orchestrator.
// It turns one backend call into one stored post and guarantees that at most
// one run is in progress at a time, whatever triggered it.
package generate

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for generation runs.
var (
	// ErrBusy is returned when a run is already in progress. It is a normal
	// outcome, not a failure: the trigger is dropped, never queued.
	ErrBusy = errors.New("a generation run is already in progress")

	// ErrGenerationFailed indicates the backend failed or returned nothing
	// usable. No post is stored.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrPersistenceFailed indicates the generated post could not be stored.
	// The generated content is lost.
	ErrPersistenceFailed = errors.New("failed to store generated post")

	// ErrTimeout is matched in addition to ErrGenerationFailed or
	// ErrPersistenceFailed when the run hit its deadline.
	ErrTimeout = errors.New("generation run timed out")
)

// wrapRunError tags cause with kind, and with ErrTimeout when the cause is a
// context deadline.
func wrapRunError(kind, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", kind, ErrTimeout, cause)
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// outcome is the metrics label for a run result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrPersistenceFailed):
		return "persistence_failed"
	default:
		return "generation_failed"
	}
}
