// Package observability groups the logging, metrics and tracing setup
// shared by cmd/api and cmd/worker.
//
// Subpackages:
//   - logging: slog construction and request correlation fields
//   - metrics: Prometheus collectors for generation, news and HTTP
//   - tracing: OpenTelemetry spans and trace ID propagation
package observability
