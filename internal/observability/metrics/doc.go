// Package metrics provides the Prometheus metrics registry and recording helpers.
//
// All collectors are registered with the default registry on package load
// and exposed via the /metrics endpoint. Use the Record* helpers rather
// than touching the collectors directly:
//
//	start := time.Now()
//	post, err := orchestrator.Trigger(ctx)
//	metrics.RecordGenerationDuration("deepseek", time.Since(start))
package metrics
