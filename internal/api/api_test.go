package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/middleware"
	"github.com/pageza/recipegen/backend/internal/service"
	"github.com/pageza/recipegen/backend/internal/testdb"
	"github.com/pageza/recipegen/backend/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer wires the real services against an in-memory store and a fake
// webhook
type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

type serverOption func(*Dependencies)

func withSessions(v middleware.TokenValidator) serverOption {
	return func(d *Dependencies) { d.Sessions = v }
}

func withLimiter(l middleware.Limiter) serverOption {
	return func(d *Dependencies) { d.Limiter = l }
}

func newTestServer(t *testing.T, webhookURL string, opts ...serverOption) *testServer {
	t.Helper()

	db := testdb.SQLite(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := zap.NewNop()

	deps := Dependencies{
		DB: db,
		Generator: service.NewGeneratorService(service.GeneratorConfig{
			WebhookURL: webhookURL,
			Timeout:    2 * time.Second,
		}, logger, service.WithMetrics(m)),
		Recipes:  service.NewRecipeService(db, m, logger),
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router := gin.New()
	SetupAPI(router, deps, []string{"http://localhost:3000"})
	return &testServer{router: router, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func webhook(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, "")

	rr := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHealthCheckStoreDown(t *testing.T) {
	s := newTestServer(t, "")
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rr := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, http.MethodGet, "/api/generate", nil)

	rr := s.do(t, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",route="/api/generate",status_code="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, "")

	rr := s.do(t, http.MethodGet, "/api/recipes", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, "")

	rr := s.do(t, http.MethodGet, "/health", nil, "X-Request-ID", "req-42")

	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
}

var errUnauthorized = apperrors.Unauthorized("invalid session token")

// staticValidator maps tokens to emails
type staticValidator map[string]string

func (v staticValidator) ValidateToken(token string) (*types.SessionClaims, error) {
	email, ok := v[token]
	if !ok {
		return nil, errUnauthorized
	}
	return &types.SessionClaims{Email: email}, nil
}
