package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("content is required")
	ErrConfiguration  = errors.New("classifier is not configured")
	ErrEmptyResponse  = errors.New("model returned an empty response")
	ErrParse          = errors.New("model response did not contain a classification")
)

// UpstreamError is a non-2xx answer from the model endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model endpoint returned %d", e.Status)
}

// Kind is a stable, client-facing error category.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindConfiguration  Kind = "configuration_error"
	KindUpstream       Kind = "upstream_error"
	KindEmptyResponse  Kind = "upstream_empty_response"
	KindParse          Kind = "upstream_parse_error"
	KindInternal       Kind = "internal_error"
)

// KindOf classifies err. Errors outside the classifier taxonomy are internal.
func KindOf(err error) Kind {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.As(err, &upstream):
		return KindUpstream
	default:
		return KindInternal
	}
}

// PublicMessage is the short message shown to callers for err. Upstream
// bodies are never included.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindInvalidRequest:
		return "content is required"
	case KindConfiguration:
		return "classification is unavailable"
	case KindUpstream:
		var upstream *UpstreamError
		errors.As(err, &upstream)
		return fmt.Sprintf("classification service error (%d)", upstream.Status)
	case KindEmptyResponse:
		return "classification service returned nothing"
	case KindParse:
		return "classification could not be understood"
	default:
		return "classification failed"
	}
}
