package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pageza/recipegen/backend/config"
	"github.com/pageza/recipegen/backend/internal/api"
	"github.com/pageza/recipegen/backend/internal/service"
	"github.com/pageza/recipegen/backend/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(port string) *config.Config {
	return &config.Config{
		Environment:    config.Test,
		ServerHost:     "127.0.0.1",
		ServerPort:     port,
		AllowedOrigins: []string{"http://localhost:3000"},
		WebhookTimeout: time.Second,
	}
}

func testDependencies(t *testing.T) api.Dependencies {
	db := testdb.SQLite(t)
	logger := zap.NewNop()
	return api.Dependencies{
		DB:        db,
		Generator: service.NewGeneratorService(service.GeneratorConfig{}, logger),
		Recipes:   service.NewRecipeService(db, nil, logger),
		Logger:    logger,
	}
}

func TestNew(t *testing.T) {
	server := New(testConfig("8080"), testDependencies(t))
	require.NotNil(t, server)
	assert.Equal(t, "127.0.0.1:8080", server.http.Addr)
	assert.Equal(t, 16*time.Second, server.http.WriteTimeout)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	server := New(testConfig("8080"), testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/save-recipe", nil)
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	server := New(testConfig(fmt.Sprint(port)), testDependencies(t))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
