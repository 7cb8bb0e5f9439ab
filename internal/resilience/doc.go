// Package resilience groups the fault tolerance helpers used by the
// generation backends, news providers, webhooks and the post store.
//
//   - circuitbreaker wraps sony/gobreaker with per-dependency presets and a
//     database wrapper.
//   - retry runs a function with exponential backoff and jitter. It serves
//     infrastructure calls such as the startup ping and webhook delivery;
//     generation runs are never retried.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.NewsProviderConfig("newsapi"))
//	result, err := circuitbreaker.Do(cb, func() (*news.SearchResult, error) {
//	    return provider.Search(ctx, topic)
//	})
//
//	err := retry.WithBackoff(ctx, retry.DBStartupConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
