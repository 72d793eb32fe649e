// Package gemini adapts the Gemini API to the classifier's Model port.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Config selects the endpoint and model.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// Model calls generateContent and returns the first candidate's text.
type Model struct {
	client *genai.Client
	model  string
}

var _ domain.Model = (*Model)(nil)

// NewModel creates a Gemini-backed model. An empty API key returns
// domain.ErrConfiguration.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrConfiguration
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Model{client: client, model: cfg.Model}, nil
}

// Generate sends prompt and asks for a JSON response.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx,
		m.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &domain.UpstreamError{Status: apiErr.Code, Body: apiErr.Message}
		}
		return "", transportError(err)
	}
	return resp.Text(), nil
}

// transportError reports a request that never got an answer as a 502 from
// the endpoint. Cancellation by the caller is returned unchanged.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &domain.UpstreamError{Status: http.StatusBadGateway, Body: err.Error()}
}
