package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ExtractID extracts and parses an integer ID from a URL path.
// It removes the specified prefix and attempts to parse the remaining string as an int64.
//
// Parameters:
//   - path: The full URL path (e.g., "/blogs/123")
//   - prefix: The prefix to remove (e.g., "/blogs/")
//
// Returns:
//   - int64: The parsed ID
//   - error: ErrInvalidID if the ID is invalid or <= 0
//
// Example:
//
//	id, err := ExtractID("/blogs/123", "/blogs/")
//	// Returns: 123, nil
func ExtractID(path, prefix string) (int64, error) {
	return ParseID(strings.TrimPrefix(path, prefix))
}

// ParseID parses a positive int64 id, typically from r.PathValue("id").
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
