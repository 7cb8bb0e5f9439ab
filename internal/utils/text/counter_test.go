package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trendscribe/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	assert.Equal(t, 0, text.CountRunes(""))
	assert.Equal(t, 5, text.CountRunes("hello"))
	assert.Equal(t, 5, text.CountRunes("こんにちは"))
	assert.Equal(t, 6, text.CountRunes("Hello👋"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		max    int
		suffix string
		want   string
	}{
		{"short enough", "abc", 5, "...", "abc"},
		{"exact", "abcde", 5, "...", "abcde"},
		{"cut with suffix", "abcdefgh", 6, "...", "abc..."},
		{"trailing space trimmed before suffix", "ab   cdefgh", 6, "...", "ab..."},
		{"multibyte", "日本語のテキスト", 5, "…", "日本語の…"},
		{"suffix longer than max", "abcdef", 2, "...", "ab"},
		{"zero max", "abc", 0, "...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Truncate(tt.in, tt.max, tt.suffix))
		})
	}
}
