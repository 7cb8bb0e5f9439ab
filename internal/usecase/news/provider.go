package news

import (
	"context"
)

// StatusOK is the only SearchResult status the gateway accepts.
const StatusOK = "ok"

// Provider searches an external news source.
type Provider interface {
	// Search returns raw results for an already sanitized topic. A transport
	// failure is an error; an upstream refusal is a result whose Status is
	// not StatusOK.
	Search(ctx context.Context, topic string) (*SearchResult, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// SearchResult is a provider response.
type SearchResult struct {
	Status   string
	Message  string
	Articles []RawArticle
}

// RawArticle is an article as the provider returned it.
type RawArticle struct {
	Title       string
	Description string
	URL         string
	URLToImage  string
	// PublishedAt is the provider's timestamp text, passed through unparsed.
	PublishedAt string
	SourceName  string
}
