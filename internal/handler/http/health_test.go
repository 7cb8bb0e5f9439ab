package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscribe/internal/usecase/generate"
	"trendscribe/internal/usecase/notify"
)

type stubGeneration struct {
	state generate.RunState
	last  *generate.RunResult
}

func (s stubGeneration) State() generate.RunState    { return s.state }
func (s stubGeneration) LastRun() *generate.RunResult { return s.last }

type stubChannels []notify.ChannelHealthStatus

func (s stubChannels) GetChannelHealth() []notify.ChannelHealthStatus { return s }

type stubKeys struct {
	n   int
	err error
}

func (s stubKeys) ActiveKeys(context.Context) (int, error) { return s.n, s.err }

func newPingDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	db.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler_Database(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		code      int
		status    string
	}{
		{"healthy database", func(m sqlmock.Sqlmock) { m.ExpectPing() }, http.StatusOK, statusHealthy},
		{"database connection error", func(m sqlmock.Sqlmock) { m.ExpectPing().WillReturnError(sql.ErrConnDone) }, http.StatusServiceUnavailable, statusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPingDB(t)
			tt.setupMock(mock)

			rec := httptest.NewRecorder()
			(&HealthHandler{DB: db, Version: "test-version"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
			resp := decodeHealth(t, rec)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, "test-version", resp.Version)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Equal(t, tt.status, resp.Checks["database"].Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_NoDatabaseConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not configured", decodeHealth(t, rec).Checks["database"].Message)
}

func TestHealthHandler_UnboundedPoolIsDegraded(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	(&HealthHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, statusDegraded, resp.Status)
	assert.Equal(t, statusDegraded, resp.Checks["database"].Status)
}

func TestHealthHandler_Generation(t *testing.T) {
	finished := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		gen    stubGeneration
		status string
	}{
		{"never ran", stubGeneration{state: generate.Idle}, statusHealthy},
		{"running", stubGeneration{state: generate.Running}, statusHealthy},
		{"last run ok", stubGeneration{last: &generate.RunResult{RunID: "r1", PostID: 3, FinishedAt: finished}}, statusHealthy},
		{"last run failed", stubGeneration{last: &generate.RunResult{RunID: "r2", Err: generate.ErrGenerationFailed, FinishedAt: finished}}, statusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPingDB(t)
			mock.ExpectPing()

			rec := httptest.NewRecorder()
			(&HealthHandler{DB: db, Generation: tt.gen}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			resp := decodeHealth(t, rec)
			assert.Equal(t, tt.status, resp.Status)
			check := resp.Checks["generation"]
			assert.Equal(t, tt.status, check.Status)
			assert.Equal(t, tt.gen.state.String(), check.Details["state"])
		})
	}
}

func TestHealthHandler_NotificationsAndThrottle(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()

	h := &HealthHandler{
		DB: db,
		Notify: stubChannels{
			{Name: "discord", Enabled: true, CircuitState: "open", CircuitBreakerOpen: true},
			{Name: "slack", Enabled: false, CircuitState: "closed"},
		},
		Throttle: stubKeys{n: 4},
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, statusDegraded, resp.Status)
	assert.Equal(t, statusDegraded, resp.Checks["notifications"].Status)
	assert.Equal(t, statusHealthy, resp.Checks["rate_limiter"].Status)
	assert.Equal(t, float64(4), resp.Checks["rate_limiter"].Details["active_keys"])
}

func TestHealthHandler_ThrottleError(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	(&HealthHandler{DB: db, Throttle: stubKeys{err: errors.New("store closed")}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, statusDegraded, decodeHealth(t, rec).Checks["rate_limiter"].Status)
}

func TestReadyHandler_ServeHTTP(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestReadyHandler_NotReady(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing().WillReturnError(errors.New("password authentication failed"))

	rec := httptest.NewRecorder()
	(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestReadyHandler_NoDatabaseConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyHandler_Timeout(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing().WillDelayFor(3 * time.Second)

	rec := httptest.NewRecorder()
	(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler_ServeHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
