package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Empty(t, FromContext(context.WithValue(context.Background(), RequestIDKey, 42)))
	assert.Equal(t, "run-7", FromContext(WithRequestID(context.Background(), "run-7")))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("abc-123_X.y"))
	assert.True(t, IsValid(strings.Repeat("a", maxIDLength)))

	assert.False(t, IsValid(""))
	assert.False(t, IsValid(strings.Repeat("a", maxIDLength+1)))
	assert.False(t, IsValid("has space"))
	assert.False(t, IsValid("line\nbreak"))
	assert.False(t, IsValid("<script>"))
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "valid id is propagated", incoming: "client-req-1", keep: true},
		{name: "missing id is generated", incoming: ""},
		{name: "invalid id is replaced", incoming: "bad id\r\nX-Injected: 1"},
		{name: "overlong id is replaced", incoming: strings.Repeat("x", maxIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, headerID string
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = FromContext(r.Context())
				headerID = r.Header.Get(RequestIDHeader)
			}))

			req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			respID := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, ctxID, respID)
			assert.Equal(t, ctxID, headerID)

			if tt.keep {
				assert.Equal(t, tt.incoming, ctxID)
				return
			}
			_, err := uuid.Parse(ctxID)
			require.NoError(t, err, "generated id should be a UUID")
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[FromContext(r.Context())] = true
	}))

	for i := 0; i < 20; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Len(t, seen, 20)
}
