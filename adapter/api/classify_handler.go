package api

import (
	"net/http"

	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
)

// ClassifyRequest is the gateway wire format.
type ClassifyRequest struct {
	Content string `json:"content"`
}

// classify handles POST /classify. The body is returned exactly as the
// classifier produced it. Empty content is reported by the classifier, so
// the request carries no validation tags.
func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ClassifyRequest](w, r, jsonOptions{})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.classifier.Classify(r.Context(), req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CaptureRequest is the body of POST /api/v1/capture.
type CaptureRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// capture handles POST /api/v1/capture.
func (h *handler) capture(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[CaptureRequest](w, r, strictJSON)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.container.CaptureHandler.Handle(r.Context(), captureApp.CaptureCommand{
		UserID: userFrom(r.Context()),
		Text:   req.Text,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
