package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Any segment is matched, not only digits: invalid ids and arbitrary topics
// must collapse to the same label as valid ones.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/blogs/[^/]+$`), Template: "/blogs/:id"},
	{Pattern: regexp.MustCompile(`^/getUniqueBlog/[^/]+$`), Template: "/getUniqueBlog/:id"},
	{Pattern: regexp.MustCompile(`^/api/news/[^/]+$`), Template: "/api/news/:topic"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs or topics to template format.
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/blogs/123")            // "/blogs/:id"
//	NormalizePath("/getUniqueBlog/7")      // "/getUniqueBlog/:id"
//	NormalizePath("/api/news/ai")          // "/api/news/:topic"
//	NormalizePath("/blogs")                // "/blogs" (unchanged)
//	NormalizePath("/generate-blog")        // "/generate-blog" (unchanged)
//	NormalizePath("/unknown/path/123")     // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/blogs/123?x=1")        // "/blogs/:id"
//	NormalizePath("/blogs/123/")           // "/blogs/:id"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization: the templates plus the static routes
// (/blogs, /generate-blog, /health, /ready, /live, /metrics).
func GetExpectedCardinality() int {
	const staticCount = 6
	return len(pathPatterns) + staticCount
}
