package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
}

func TestGateway_Classify(t *testing.T) {
	model := new(mockModel)
	metrics := observability.NewInMemoryMetrics()
	gateway := NewGateway(model, nil, metrics).WithClock(fixedClock)

	model.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "2026-03-04") && strings.Contains(prompt, "buy milk")
	})).Return(`{"category_slug":"home","entry_type":"task","metadata":{"emoji":"🥛"}}`, nil).Once()

	c, err := gateway.Classify(context.Background(), "  buy milk  ")

	require.NoError(t, err)
	assert.Equal(t, "home", c.CategorySlug())
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricClassifierRequests, observability.T("outcome", "ok")))
	assert.Len(t, metrics.GetTimings(observability.MetricClassifierDuration, observability.T("outcome", "ok")), 1)
	model.AssertExpectations(t)
}

func TestGateway_InvalidRequest(t *testing.T) {
	model := new(mockModel)
	gateway := NewGateway(model, nil, nil)

	_, err := gateway.Classify(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	model.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGateway_Unconfigured(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	gateway := NewGateway(nil, nil, metrics)

	_, err := gateway.Classify(context.Background(), "anything")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricClassifierRequests, observability.T("outcome", "configuration_error")))
}

func TestGateway_UpstreamErrorPropagates(t *testing.T) {
	model := new(mockModel)
	gateway := NewGateway(model, nil, nil)
	model.On("Generate", mock.Anything, mock.Anything).
		Return("", &domain.UpstreamError{Status: 503, Body: "overloaded"}).Once()

	_, err := gateway.Classify(context.Background(), "text")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 503, upstream.Status)
	assert.Equal(t, "overloaded", upstream.Body)
	model.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGateway_EmptyResponse(t *testing.T) {
	model := new(mockModel)
	gateway := NewGateway(model, nil, nil)
	model.On("Generate", mock.Anything, mock.Anything).Return("  \n", nil)

	_, err := gateway.Classify(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestGateway_ParseError(t *testing.T) {
	model := new(mockModel)
	gateway := NewGateway(model, nil, nil)
	model.On("Generate", mock.Anything, mock.Anything).Return("no idea", nil)

	_, err := gateway.Classify(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(fixedClock(), DefaultVocabulary(), "run 3 times a week")

	assert.Contains(t, prompt, "Today is 2026-03-04 (Wednesday)")
	assert.Contains(t, prompt, `"home", "work", "uni", "ideas"`)
	assert.Contains(t, prompt, `"task", "note", "insight", "bookmark", "goal"`)
	assert.Contains(t, prompt, `"low", "medium", "high", "urgent"`)
	assert.True(t, strings.HasSuffix(prompt, "run 3 times a week"))
}

func TestBuildPrompt_CustomVocabulary(t *testing.T) {
	prompt := BuildPrompt(fixedClock(), Vocabulary{Categories: []string{"garden"}}, "x")

	assert.Contains(t, prompt, `one of ["garden"]`)
}
