package metrics

import (
	"database/sql"
	"time"
)

// RecordGenerationRun records the outcome of a trigger. Busy rejections are
// recorded here too; they never reach the backend.
func RecordGenerationRun(trigger, outcome string) {
	GenerationRunsTotal.WithLabelValues(trigger, outcome).Inc()
}

// RecordGenerationDuration records the duration of an accepted run.
func RecordGenerationDuration(backend string, duration time.Duration) {
	GenerationDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// SetGenerationRunning mirrors the orchestrator run state.
func SetGenerationRunning(running bool) {
	if running {
		GenerationRunning.Set(1)
		return
	}
	GenerationRunning.Set(0)
}

// UpdatePostsTotal updates the stored post count.
func UpdatePostsTotal(count int) {
	PostsTotal.Set(float64(count))
}

// RecordNewsFetch records the outcome of a gateway fetch.
func RecordNewsFetch(outcome string) {
	NewsFetchTotal.WithLabelValues(outcome).Inc()
}

// RecordNewsProviderDuration records the duration of an upstream search.
func RecordNewsProviderDuration(provider string, duration time.Duration) {
	NewsProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordArticlesFiltered records how many articles the filter dropped.
func RecordArticlesFiltered(count int) {
	if count > 0 {
		NewsArticlesFilteredTotal.Add(float64(count))
	}
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "list_posts", "insert_post").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDBStats copies connection pool statistics into the gauges.
func RecordDBStats(stats sql.DBStats) {
	DBConnectionsActive.Set(float64(stats.InUse))
	DBConnectionsIdle.Set(float64(stats.Idle))
}
