package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body.Error
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		data         any
		expectedBody string
	}{
		{"map", http.StatusOK, map[string]string{"message": "success"}, `{"message":"success"}`},
		{"struct", http.StatusCreated, struct{ ID int }{ID: 123}, `{"ID":123}`},
		{"nil body", http.StatusNoContent, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, tt.code, tt.data)

			if w.Code != tt.code {
				t.Errorf("Code = %v, want %v", w.Code, tt.code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %v, want application/json", ct)
			}
			if body := strings.TrimSpace(w.Body.String()); body != tt.expectedBody {
				t.Errorf("Body = %v, want %v", body, tt.expectedBody)
			}
		})
	}
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, make(chan int))

	if w.Code != http.StatusOK {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, errors.New("topic is invalid"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusBadRequest)
	}
	if msg := decodeError(t, w); msg != "topic is invalid" {
		t.Errorf("error = %q", msg)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{42, "42"},
		{0, "1"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		RetryAfter(w, tt.seconds, "Too many requests, please try again later.")

		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Code = %v, want 429", w.Code)
		}
		if got := w.Header().Get("Retry-After"); got != tt.want {
			t.Errorf("Retry-After = %q, want %q", got, tt.want)
		}
		if msg := decodeError(t, w); msg != "Too many requests, please try again later." {
			t.Errorf("error = %q", msg)
		}
	}
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		err     error
		wantMsg string
	}{
		{"validation message passes", http.StatusBadRequest, errors.New("id is invalid"), "id is invalid"},
		{"not found passes", http.StatusNotFound, errors.New("post not found"), "post not found"},
		{"unknown 4xx is masked", http.StatusBadRequest, errors.New("pq: relation missing"), "internal server error"},
		{"5xx always masked", http.StatusInternalServerError, errors.New("field is required"), "internal server error"},
		{"wrapped DSN masked", http.StatusServiceUnavailable, fmt.Errorf("connect: %w", errors.New("postgres://u:p@h/db")), "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeError(w, tt.code, tt.err)

			if w.Code != tt.code {
				t.Errorf("Code = %v, want %v", w.Code, tt.code)
			}
			if msg := decodeError(t, w); msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestSafeError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	SafeError(w, http.StatusInternalServerError, nil)

	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestAppError(t *testing.T) {
	cause := errors.New("backend timeout")
	appErr := NewAppError(http.StatusServiceUnavailable, "generation timed out", cause)

	if appErr.Error() != "backend timeout" {
		t.Errorf("Error() = %q", appErr.Error())
	}
	if !errors.Is(appErr, cause) {
		t.Error("expected AppError to unwrap to cause")
	}

	noCause := NewAppError(http.StatusConflict, "busy", nil)
	if noCause.Error() != "busy" {
		t.Errorf("Error() = %q, want %q", noCause.Error(), "busy")
	}
}

func TestSafeAppError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "app error uses its own code and message",
			code:     http.StatusInternalServerError,
			err:      NewAppError(http.StatusBadGateway, "generation backend failed", errors.New("sk-1234567890abcdef leaked")),
			wantCode: http.StatusBadGateway,
			wantMsg:  "generation backend failed",
		},
		{
			name:     "wrapped app error",
			code:     http.StatusInternalServerError,
			err:      fmt.Errorf("handler: %w", NewAppError(http.StatusConflict, "busy", nil)),
			wantCode: http.StatusConflict,
			wantMsg:  "busy",
		},
		{
			name:     "plain error falls back",
			code:     http.StatusInternalServerError,
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeAppError(w, tt.code, tt.err)

			if w.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", w.Code, tt.wantCode)
			}
			if msg := decodeError(t, w); msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
