package generate

import "context"

// Trigger sources recorded in logs and metrics.
const (
	TriggerTimer  = "timer"
	TriggerManual = "manual"
)

type triggerKey struct{}

// WithTrigger marks ctx with the source of a run.
func WithTrigger(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, triggerKey{}, source)
}

// TriggerFromContext returns the source set by WithTrigger, or TriggerManual.
func TriggerFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(triggerKey{}).(string); ok && s != "" {
		return s
	}
	return TriggerManual
}
