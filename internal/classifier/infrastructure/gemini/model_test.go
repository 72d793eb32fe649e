package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	model, err := NewModel(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return model
}

func TestNewModel_RequiresAPIKey(t *testing.T) {
	_, err := NewModel(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestModel_Generate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	model := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"category_slug\":\"work\",\"entry_type\":\"note\"}"}]}}]}`))
	})

	text, err := model.Generate(context.Background(), "classify this")

	require.NoError(t, err)
	assert.Equal(t, `{"category_slug":"work","entry_type":"note"}`, text)
	assert.True(t, strings.HasSuffix(gotPath, "/models/"+DefaultModel+":generateContent"), gotPath)
	assert.Contains(t, gotBody, "contents")
}

func TestModel_Generate_EmptyCandidates(t *testing.T) {
	model := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	text, err := model.Generate(context.Background(), "classify this")

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestModel_Generate_UpstreamError(t *testing.T) {
	model := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := model.Generate(context.Background(), "classify this")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, "quota exceeded", upstream.Body)
}

func TestModel_Generate_NoRetry(t *testing.T) {
	var calls atomic.Int32
	model := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom"}}`))
	})

	_, err := model.Generate(context.Background(), "classify this")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestModel_Generate_Unreachable(t *testing.T) {
	model, err := NewModel(context.Background(), Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1/"})
	require.NoError(t, err)

	_, err = model.Generate(context.Background(), "classify this")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
	assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
}

func TestModel_Generate_CanceledPassesThrough(t *testing.T) {
	model := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.Generate(ctx, "classify this")

	assert.ErrorIs(t, err, context.Canceled)
}
