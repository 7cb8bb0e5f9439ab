package entity

// Article is a news article returned by the aggregation gateway.
// It is never persisted; the gateway caches it per sanitized topic.
type Article struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt string
	SourceName  string
}
