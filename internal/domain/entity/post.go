// Package entity defines the core domain entities and validation logic for the application.
// It contains the generated blog post (the persisted content record) and the transient
// news article returned by the aggregation gateway.
package entity

import (
	"fmt"
	"strings"
	"time"
)

// Post is a generated long-form content record.
// It is created exactly once per successful generation run and never updated.
type Post struct {
	ID              int64
	Title           string
	Body            string
	SourcesAnalyzed string
	// Backend is the name of the generation backend that produced the post.
	Backend   string
	CreatedAt time.Time
}

// Validate checks the fields the persistence layer relies on.
// An empty body is accepted: a backend that returned no usable body still
// produces a valid record.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(p.SourcesAnalyzed) == "" {
		return &ValidationError{Field: "sources_analyzed", Message: "sources_analyzed is required"}
	}
	return nil
}

// ValidationError names the field a Post failed on.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid post %s: %s", e.Field, e.Message)
}
