// Package remote talks to a classifier gateway running as its own service.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/go-resty/resty/v2"
)

// ClassifyPath is the gateway route.
const ClassifyPath = "/classify"

// Client is a domain.Classifier backed by the HTTP gateway.
type Client struct {
	http *resty.Client
}

var _ domain.Classifier = (*Client)(nil)

type classifyRequest struct {
	Content string `json:"content"`
}

// ErrorBody is the gateway's error response.
type ErrorBody struct {
	Error string      `json:"error"`
	Kind  domain.Kind `json:"kind,omitempty"`
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: c}
}

// Classify posts content to the gateway.
func (c *Client) Classify(ctx context.Context, content string) (domain.Classification, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&classifyRequest{Content: content}).
		Post(ClassifyPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &domain.UpstreamError{Status: http.StatusBadGateway, Body: fmt.Sprintf("gateway request: %v", err)}
	}

	if resp.IsError() {
		return nil, errorFromResponse(resp.StatusCode(), resp.Body())
	}

	var result domain.Classification
	if err := json.Unmarshal(resp.Body(), &result); err != nil || result == nil {
		return nil, domain.ErrParse
	}
	return result, nil
}

// errorFromResponse restores the gateway's error kind so callers can use
// errors.Is across the process boundary.
func errorFromResponse(status int, body []byte) error {
	var payload ErrorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return &domain.UpstreamError{Status: status, Body: string(body)}
	}

	switch payload.Kind {
	case domain.KindInvalidRequest:
		return domain.ErrInvalidRequest
	case domain.KindConfiguration:
		return domain.ErrConfiguration
	case domain.KindEmptyResponse:
		return domain.ErrEmptyResponse
	case domain.KindParse:
		return domain.ErrParse
	case domain.KindUpstream:
		return &domain.UpstreamError{Status: http.StatusBadGateway, Body: payload.Error}
	default:
		return &domain.UpstreamError{Status: status, Body: payload.Error}
	}
}
