package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/felixgeelhaar/synapse/internal/app/apptest"
	classifierApp "github.com/felixgeelhaar/synapse/internal/classifier/application"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/classifier/infrastructure/gemini"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "secret"

var taskClassification = classifierDomain.Classification{
	"category_slug": "work",
	"entry_type":    "task",
	"metadata":      map[string]any{"priority": "high"},
}

type fixture struct {
	router    http.Handler
	container *app.Container
}

func newFixture(t *testing.T, classifier classifierDomain.Classifier) *fixture {
	t.Helper()
	c := apptest.NewContainer(t, classifier)
	return &fixture{
		container: c,
		router: NewRouter(RouterConfig{
			Classifier: classifier,
			Container:  c,
			Tokens:     map[string]uuid.UUID{testToken: apptest.UserID},
			Health:     c.Health,
			Logger:     apptest.Logger(),
		}),
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.doAs(t, testToken, method, path, body)
}

func (f *fixture) doAs(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type captureBody struct {
	Kind  string `json:"kind"`
	Entry struct {
		ID string `json:"id"`
	} `json:"entry"`
}

// captureTask creates one entry through the API and returns its ID.
func (f *fixture) captureTask(t *testing.T, text string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/capture", map[string]string{"text": text})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[captureBody](t, rec)
	require.NotEmpty(t, body.Entry.ID)
	return body.Entry.ID
}

type fakeModel struct {
	text string
	err  error
}

func (m fakeModel) Generate(context.Context, string) (string, error) { return m.text, m.err }

func TestHealth(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	for _, path := range []string{"/health", "/healthz"} {
		rec := f.doAs(t, "", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
	}

	rec := f.doAs(t, "", http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	req := httptest.NewRequest(http.MethodOptions, "/classify", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestClassify(t *testing.T) {
	classifier := apptest.Static(taskClassification)
	f := newFixture(t, classifier)

	rec := f.doAs(t, "", http.MethodPost, "/classify", map[string]string{"content": "ship the release"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "work", body["category_slug"])
	assert.Equal(t, "task", body["entry_type"])
	assert.Equal(t, []string{"ship the release"}, classifier.Calls())
}

func TestClassify_IgnoresUnknownFields(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	rec := f.doAs(t, "", http.MethodPost, "/classify", `{"content":"hi","client":"web"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name     string
		model    classifierDomain.Model
		body     any
		wantKind classifierDomain.Kind
	}{
		{"empty content", fakeModel{text: "{}"}, map[string]string{"content": "  "}, classifierDomain.KindInvalidRequest},
		{"missing model", nil, map[string]string{"content": "hello"}, classifierDomain.KindConfiguration},
		{"upstream", fakeModel{err: &classifierDomain.UpstreamError{Status: 503, Body: "quota exceeded for key abc"}}, map[string]string{"content": "hello"}, classifierDomain.KindUpstream},
		{"empty response", fakeModel{text: "   "}, map[string]string{"content": "hello"}, classifierDomain.KindEmptyResponse},
		{"unparseable", fakeModel{text: "no json here"}, map[string]string{"content": "hello"}, classifierDomain.KindParse},
		{"malformed body", fakeModel{text: "{}"}, "{not json", classifierDomain.KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := classifierApp.NewGateway(tt.model, apptest.Logger(), observability.NoopMetrics{})
			router := NewRouter(RouterConfig{Classifier: gateway, Logger: apptest.Logger()})

			raw, ok := tt.body.(string)
			if !ok {
				b, err := json.Marshal(tt.body)
				require.NoError(t, err)
				raw = string(b)
			}
			req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(raw))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[ErrorResponse](t, rec)
			assert.Equal(t, string(tt.wantKind), body.Kind)
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, rec.Body.String(), "quota exceeded")
		})
	}
}

func TestClassify_UnreachableModel(t *testing.T) {
	model, err := gemini.NewModel(context.Background(), gemini.Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1/"})
	require.NoError(t, err)
	gateway := classifierApp.NewGateway(model, apptest.Logger(), observability.NoopMetrics{})
	router := NewRouter(RouterConfig{Classifier: gateway, Logger: apptest.Logger()})

	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(`{"content":"buy milk"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, string(classifierDomain.KindUpstream), body.Kind)
	assert.NotContains(t, rec.Body.String(), "127.0.0.1")
}

func TestGatewayRouterHasNoAPI(t *testing.T) {
	router := NewRouter(RouterConfig{Classifier: apptest.Static(taskClassification), Logger: apptest.Logger()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	for _, token := range []string{"", "wrong"} {
		rec := f.doAs(t, token, http.MethodGet, "/api/v1/entries", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, KindUnauthenticated, decode[ErrorResponse](t, rec).Kind)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Basic "+testToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCapture(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	rec := f.do(t, http.MethodPost, "/api/v1/capture", map[string]string{"text": "ship the release"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "entry", body["kind"])
	assert.Equal(t, "Work", body["category_name"])
	entry := body["entry"].(map[string]any)
	assert.Equal(t, "ship the release", entry["content"])
	assert.Equal(t, "task", entry["entry_type"])
	assert.Equal(t, "pending", entry["status"])
}

func TestCapture_Goal(t *testing.T) {
	f := newFixture(t, apptest.Static(classifierDomain.Classification{
		"category_slug": "home",
		"entry_type":    "goal",
		"metadata":      map[string]any{"title": "Read", "emoji": "📚", "target": 4.0, "unit": "books"},
	}))

	rec := f.do(t, http.MethodPost, "/api/v1/capture", map[string]string{"text": "read four books this month"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "goal", body["kind"])
	assert.NotEmpty(t, body["period_label"])

	goals := decode[GoalsResponse](t, f.do(t, http.MethodGet, "/api/v1/goals", nil))
	require.Len(t, goals.Goals, 1)
	assert.Equal(t, "Read", goals.Goals[0].Title)
	assert.Equal(t, 4, goals.Goals[0].Target)
}

func TestCapture_BindErrors(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	tests := []struct {
		name string
		body any
		want string
	}{
		{"empty body", "", "request body is empty"},
		{"invalid json", "{", "invalid JSON body"},
		{"unknown field", `{"text":"a","extra":1}`, "invalid JSON body"},
		{"trailing data", `{"text":"a"}{"text":"b"}`, "request body must be a single JSON object"},
		{"missing text", map[string]string{}, "text is a required field"},
		{"too long", map[string]string{"text": strings.Repeat("a", 10001)}, "text must be a maximum of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/capture", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[ErrorResponse](t, rec)
			assert.Equal(t, string(classifierDomain.KindInvalidRequest), body.Kind)
			assert.Contains(t, body.Error, tt.want)
		})
	}
}

func TestCapture_ClassifierFailure(t *testing.T) {
	f := newFixture(t, apptest.Failing(&classifierDomain.UpstreamError{Status: 500, Body: "internal stack trace"}))

	rec := f.do(t, http.MethodPost, "/api/v1/capture", map[string]string{"text": "anything"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(classifierDomain.KindUpstream), decode[ErrorResponse](t, rec).Kind)
	assert.NotContains(t, rec.Body.String(), "stack trace")
}

func TestEntriesFlow(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))
	id := f.captureTask(t, "write tests")

	list := decode[EntriesResponse](t, f.do(t, http.MethodGet, "/api/v1/entries?view=tasks", nil))
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "tasks", list.View)
	assert.Equal(t, id, list.Entries[0].ID.String())

	rec := f.do(t, http.MethodPut, "/api/v1/entries/"+id+"/status", map[string]string{"status": "in-progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusResponse{ID: id, Status: "in_progress"}, decode[StatusResponse](t, rec))

	rec = f.do(t, http.MethodPost, "/api/v1/entries/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "done", decode[StatusResponse](t, rec).Status)

	board := decode[BoardResponse](t, f.do(t, http.MethodGet, "/api/v1/entries/board", nil))
	require.Len(t, board.Columns, 4)
	assert.Equal(t, "done", board.Columns[2].Status)
	assert.Len(t, board.Columns[2].Entries, 1)
	assert.Empty(t, board.Columns[0].Entries)

	rec = f.do(t, http.MethodPatch, "/api/v1/entries/"+id, map[string]any{
		"content":  "write more tests",
		"tags":     []string{"qa"},
		"priority": "urgent",
		"due_date": "2026-11-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "write more tests", updated["content"])
	assert.Equal(t, "urgent", updated["priority"])
	assert.Equal(t, []any{"qa"}, updated["tags"])
	assert.NotNil(t, updated["due_date"])

	rec = f.do(t, http.MethodPatch, "/api/v1/entries/"+id, map[string]any{"due_date": ""})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, decode[map[string]any](t, rec), "due_date")

	stats := decode[map[string]any](t, f.do(t, http.MethodGet, "/api/v1/stats", nil))
	assert.EqualValues(t, 1, stats["total"])

	rec = f.do(t, http.MethodDelete, "/api/v1/entries/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/entries/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, KindNotFound, decode[ErrorResponse](t, rec).Kind)
}

func TestEntries_Errors(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))
	id := f.captureTask(t, "something")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"bad id", http.MethodGet, "/api/v1/entries/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/entries/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown view", http.MethodGet, "/api/v1/entries?view=calendar", nil, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/v1/entries?limit=-1", nil, http.StatusBadRequest},
		{"bad status", http.MethodPut, "/api/v1/entries/" + id + "/status", map[string]string{"status": "blocked"}, http.StatusBadRequest},
		{"missing status", http.MethodPut, "/api/v1/entries/" + id + "/status", map[string]string{}, http.StatusBadRequest},
		{"bad priority", http.MethodPatch, "/api/v1/entries/" + id, map[string]string{"priority": "someday"}, http.StatusBadRequest},
		{"bad date", http.MethodPatch, "/api/v1/entries/" + id, map[string]string{"due_date": "next week"}, http.StatusBadRequest},
		{"unknown category", http.MethodPatch, "/api/v1/entries/" + id, map[string]string{"category": "circus"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestEntries_OtherUserCannotSee(t *testing.T) {
	classifier := apptest.Static(taskClassification)
	c := apptest.NewContainer(t, classifier)
	other := uuid.New()
	router := NewRouter(RouterConfig{
		Classifier: classifier,
		Container:  c,
		Tokens:     map[string]uuid.UUID{testToken: apptest.UserID, "other": other},
		Logger:     apptest.Logger(),
	})
	f := &fixture{router: router, container: c}
	id := f.captureTask(t, "private")

	rec := f.doAs(t, "other", http.MethodGet, "/api/v1/entries/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	list := decode[EntriesResponse](t, f.doAs(t, "other", http.MethodGet, "/api/v1/entries", nil))
	assert.Empty(t, list.Entries)
}

func TestGoalsFlow(t *testing.T) {
	f := newFixture(t, apptest.Static(classifierDomain.Classification{
		"category_slug": "home",
		"entry_type":    "goal",
		"metadata":      map[string]any{"title": "Swim", "target": 2.0},
	}))
	rec := f.do(t, http.MethodPost, "/api/v1/capture", map[string]string{"text": "swim twice a week"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	goals := decode[GoalsResponse](t, f.do(t, http.MethodGet, "/api/v1/goals", nil))
	require.Len(t, goals.Goals, 1)
	goalID := goals.Goals[0].ID.String()

	rec = f.do(t, http.MethodPost, "/api/v1/goals/"+goalID+"/progress", map[string]int{"delta": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	progress := decode[GoalProgressResponse](t, rec)
	assert.Equal(t, 2, progress.Progress)
	assert.True(t, progress.Completed)
	assert.NotEmpty(t, progress.PeriodLabel)

	rec = f.do(t, http.MethodPost, "/api/v1/goals/"+goalID+"/progress", map[string]int{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/goals/"+goalID+"/deactivate", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Empty(t, decode[GoalsResponse](t, f.do(t, http.MethodGet, "/api/v1/goals", nil)).Goals)
	assert.Len(t, decode[GoalsResponse](t, f.do(t, http.MethodGet, "/api/v1/goals?all=true", nil)).Goals, 1)

	rec = f.do(t, http.MethodPost, "/api/v1/goals/"+goalID+"/progress", map[string]int{"delta": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/goals/"+goalID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/goals/"+goalID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaxonomyFlow(t *testing.T) {
	f := newFixture(t, apptest.Static(taskClassification))

	categories := decode[map[string][]map[string]any](t, f.do(t, http.MethodGet, "/api/v1/categories", nil))
	assert.Len(t, categories["categories"], 4)

	rec := f.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"slug": "health", "name": "Health", "color": "#22aa66"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "health", decode[CreatedResponse](t, rec).Slug)

	rec = f.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"slug": "health", "name": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"slug": "x", "name": "X", "color": "green"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/subjects", map[string]string{"category": "health", "slug": "running", "name": "Running"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/subjects", map[string]string{"category": "nope", "slug": "a", "name": "A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	subjects := decode[map[string][]map[string]any](t, f.do(t, http.MethodGet, "/api/v1/subjects?category=health", nil))
	require.Len(t, subjects["subjects"], 1)
	assert.Equal(t, "running", subjects["subjects"][0]["slug"])
}

func TestRequestTimingRecordsRoutePattern(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	router := NewRouter(RouterConfig{
		Classifier: apptest.Static(taskClassification),
		Metrics:    metrics,
		Logger:     apptest.Logger(),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, metrics.GetTimings(observability.MetricHTTPRequestDuration,
		observability.T("method", http.MethodGet),
		observability.T("route", "/health"),
		observability.T("status", "200"),
	), 1)
}
