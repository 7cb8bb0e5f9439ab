package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Validate(t *testing.T) {
	tests := []struct {
		name      string
		post      Post
		wantField string
	}{
		{
			name:      "valid post",
			post:      Post{Title: "AI in 2026", Body: "body", SourcesAnalyzed: "Reuters"},
			wantField: "",
		},
		{
			name:      "empty body is allowed",
			post:      Post{Title: "AI in 2026", SourcesAnalyzed: "Reuters"},
			wantField: "",
		},
		{
			name:      "blank title",
			post:      Post{Title: "  ", Body: "body", SourcesAnalyzed: "Reuters"},
			wantField: "title",
		},
		{
			name:      "missing sources",
			post:      Post{Title: "AI in 2026", Body: "body"},
			wantField: "sources_analyzed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "title", Message: "title is required"}
	assert.Equal(t, "invalid post title: title is required", err.Error())
}
