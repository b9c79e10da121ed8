package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingArchiver struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (a *recordingArchiver) Archive(ctx context.Context, payload []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payloads = append(a.payloads, payload)
	return "upstream-payloads/test.txt", nil
}

// newUpstream starts a fake webhook that records each request body
func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *int32, chan types.GenerateRequest) {
	t.Helper()
	var calls int32
	received := make(chan types.GenerateRequest, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req types.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received <- req

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, received
}

func newTestGenerator(t *testing.T, url string, opts ...GeneratorOption) *GeneratorService {
	return NewGeneratorService(GeneratorConfig{WebhookURL: url, Timeout: 2 * time.Second}, zaptest.NewLogger(t), opts...)
}

func TestGenerateSendsTrimmedValuesOnce(t *testing.T) {
	srv, calls, requests := newUpstream(t, http.StatusOK,
		`{"title":"Chickpea Curry","prep_time":"25 minutes","servings":4,"steps":["Fry onion","Add chickpeas"]}`)
	gen := newTestGenerator(t, srv.URL)

	recipe, err := gen.Generate(context.Background(), types.GenerateRequest{
		Ingredients: []string{"  chickpeas ", "onion", "   "},
		Diet:        " vegan ",
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	received := <-requests
	assert.Equal(t, []string{"chickpeas", "onion"}, received.Ingredients)
	assert.Equal(t, "vegan", received.Diet)
	assert.Equal(t, &types.GeneratedRecipe{
		Title:    "Chickpea Curry",
		PrepTime: "25 minutes",
		Servings: 4,
		Steps:    []string{"Fry onion", "Add chickpeas"},
	}, recipe)
}

func TestGenerateDefaultsUseTrimmedDiet(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusOK, `{}`)
	gen := newTestGenerator(t, srv.URL)

	recipe, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: " keto "})

	require.NoError(t, err)
	assert.Equal(t, "Custom keto Recipe", recipe.Title)
	assert.Equal(t, DefaultPrepTime, recipe.PrepTime)
	assert.Equal(t, DefaultServings, recipe.Servings)
	assert.Equal(t, []string{DefaultStep}, recipe.Steps)
}

func TestGenerateValidationMakesNoCall(t *testing.T) {
	srv, calls, _ := newUpstream(t, http.StatusOK, `{}`)
	gen := newTestGenerator(t, srv.URL)

	tests := []struct {
		name    string
		req     types.GenerateRequest
		message string
	}{
		{"no ingredients", types.GenerateRequest{Diet: "vegan"}, "Please provide at least one ingredient"},
		{"blank ingredients", types.GenerateRequest{Ingredients: []string{" ", ""}, Diet: "vegan"}, "Please provide at least one ingredient"},
		{"missing diet", types.GenerateRequest{Ingredients: []string{"rice"}}, "Please provide a valid diet preference"},
		{"blank diet", types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "  "}, "Please provide a valid diet preference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), tt.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, tt.message, apperrors.As(err).Message)
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGenerateMissingWebhookURL(t *testing.T) {
	gen := newTestGenerator(t, "")

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestGenerateUpstreamErrorMessagePassesThrough(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusInternalServerError, `{"error":"X"}`)
	gen := newTestGenerator(t, srv.URL)

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, "X", apperrors.As(err).Message)
}

func TestGenerateUpstreamErrorWithoutMessage(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusServiceUnavailable, `{"detail":"down"}`)
	gen := newTestGenerator(t, srv.URL)

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, "recipe generator error: 503 Service Unavailable", apperrors.As(err).Message)
}

func TestGenerateEmptyBody(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusOK, "")
	gen := newTestGenerator(t, srv.URL)

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	assert.ErrorIs(t, err, apperrors.ErrUpstreamEmptyResponse)
}

func TestGenerateEmptyBodyWinsOverStatus(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusBadGateway, "")
	gen := newTestGenerator(t, srv.URL)

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	assert.ErrorIs(t, err, apperrors.ErrUpstreamEmptyResponse)
}

func TestGenerateMalformedBodyIsArchived(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusOK, `<html>Workflow error</html>`)
	archiver := &recordingArchiver{}
	gen := newTestGenerator(t, srv.URL, WithArchiver(archiver))

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamParse)
	require.Len(t, archiver.payloads, 1)
	assert.Equal(t, "<html>Workflow error</html>", string(archiver.payloads[0]))
}

func TestGenerateArrayBody(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusOK, `[{"title":"Risotto","instructions":"Stir\nStir more"}]`)
	gen := newTestGenerator(t, srv.URL)

	recipe, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegetarian"})

	require.NoError(t, err)
	assert.Equal(t, "Risotto", recipe.Title)
	assert.Equal(t, []string{"Stir", "Stir more"}, recipe.Steps)
}

func TestGenerateOversizedBody(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusOK, `{"title":"this body is longer than the limit"}`)
	gen := NewGeneratorService(GeneratorConfig{WebhookURL: srv.URL, Timeout: time.Second, MaxBodyBytes: 10}, zaptest.NewLogger(t))

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	gen := NewGeneratorService(GeneratorConfig{WebhookURL: srv.URL, Timeout: 50 * time.Millisecond}, zaptest.NewLogger(t))

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, apperrors.As(err).StatusCode())
}

func TestGenerateUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gen := newTestGenerator(t, url)

	_, err := gen.Generate(context.Background(), types.GenerateRequest{Ingredients: []string{"rice"}, Diet: "vegan"})

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestDiagnostics(t *testing.T) {
	gen := NewGeneratorService(GeneratorConfig{WebhookURL: "http://n8n.local/webhook", RateLimitEnabled: true}, zaptest.NewLogger(t))

	diag := gen.Diagnostics()

	assert.Equal(t, "Test Pasta", diag.TestRecipe.Title)
	assert.True(t, diag.Environment.WebhookURLConfigured)
	assert.True(t, diag.Environment.RateLimitEnabled)
	assert.False(t, diag.Environment.SessionAuthEnabled)

	assert.False(t, newTestGenerator(t, "").Diagnostics().Environment.WebhookURLConfigured)
}
