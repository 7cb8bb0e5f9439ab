package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscribe/internal/config"
)

func TestClaude_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-5-20250929", req["model"])
		assert.EqualValues(t, 3000, req["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": "# Title\nBody."},
				{"type": "text", "text": "\nSources:\nAP"},
			},
			"usage": map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	cfg := &config.GeneratorConfig{
		Type:        config.GeneratorClaude,
		APIKey:      "sk-ant-test",
		BaseURL:     srv.URL,
		Model:       "claude-sonnet-4-5-20250929",
		MaxTokens:   3000,
		Temperature: 0.7,
	}
	backend := NewClaude(cfg, nil)

	out, err := backend.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "# Title\nBody.\nSources:\nAP", out)
	assert.Equal(t, "claude", backend.Name())
}

func TestClaude_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	backend := NewClaude(&config.GeneratorConfig{
		Type: config.GeneratorClaude, APIKey: "k", BaseURL: srv.URL, Model: "m", MaxTokens: 10,
	}, nil)

	_, err := backend.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude api error")
}
