package text

import (
	"regexp"
	"strings"
)

// DefaultSources is stored when the generated text names no sources.
const DefaultSources = "Various news sources and expert opinions"

var (
	headingPrefix = regexp.MustCompile(`^#+\s*`)
	titlePrefix   = regexp.MustCompile(`(?i)^title:\s*`)
	sourcesMarker = regexp.MustCompile(`(?i)^[#*\s]*sources:\**\s*(.*)$`)
)

// Extracted is the structured form of a generated post.
type Extracted struct {
	Title   string
	Body    string
	Sources string
}

// Extract splits raw generation output into title, body and sources.
//
// It is a best-effort heuristic, not a parser, and never fails:
//   - Title is the first line without leading "#" heading markup, a
//     "Title:" prefix or surrounding "**" emphasis. An empty first line
//     yields an empty title.
//   - Body is every following line up to a "Sources:" marker line, trimmed.
//     A marker line stands alone, or carries the sources inline as the last
//     non-blank line of the text.
//   - Sources is the text after the marker, trimmed. Without a marker, or
//     with nothing after it, Sources is DefaultSources.
func Extract(raw string) Extracted {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")

	out := Extracted{
		Title:   cleanTitle(lines[0]),
		Sources: DefaultSources,
	}

	rest := lines[1:]
	bodyEnd := len(rest)
	for i, line := range rest {
		m := sourcesMarker.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		after := strings.TrimSpace(strings.Join(rest[i+1:], "\n"))
		inline := strings.TrimSpace(m[1])
		if inline != "" && after != "" {
			// A prose line that happens to open with "Sources:".
			continue
		}
		bodyEnd = i
		if s := inline + after; s != "" {
			out.Sources = s
		}
		break
	}

	out.Body = strings.TrimSpace(strings.Join(rest[:bodyEnd], "\n"))
	return out
}

func cleanTitle(line string) string {
	t := strings.TrimSpace(line)
	t = headingPrefix.ReplaceAllString(t, "")
	t = titlePrefix.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)
	if len(t) > 4 && strings.HasPrefix(t, "**") && strings.HasSuffix(t, "**") {
		t = strings.TrimSpace(t[2 : len(t)-2])
	}
	return t
}
