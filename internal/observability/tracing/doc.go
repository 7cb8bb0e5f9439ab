// Package tracing provides OpenTelemetry tracing integration.
//
// Setup installs an SDK tracer provider and the W3C Trace Context
// propagator. Middleware opens a server span per HTTP request and echoes
// the trace ID in X-Trace-Id. Usecases open child spans with StartSpan and
// close them with EndSpan, so generation runs and news fetches appear under
// the request that triggered them.
//
//	func main() {
//	    shutdown := tracing.Setup()
//	    defer shutdown(context.Background())
//	}
//
//	func (s *Service) Fetch(ctx context.Context) (err error) {
//	    ctx, span := tracing.StartSpan(ctx, "news.Fetch")
//	    defer func() { tracing.EndSpan(span, err) }()
//	    // ...
//	}
package tracing
