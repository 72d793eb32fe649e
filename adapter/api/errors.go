package api

import (
	"errors"
	"net/http"

	captureDomain "github.com/felixgeelhaar/synapse/internal/capture/domain"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	entryCommands "github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	entriesDomain "github.com/felixgeelhaar/synapse/internal/entries/domain"
	goalCommands "github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	goalsDomain "github.com/felixgeelhaar/synapse/internal/goals/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
)

// Error kinds beyond the classifier's own.
const (
	KindUnauthenticated = "unauthenticated"
	KindNotFound        = "not_found"
	KindConflict        = "conflict"
	KindPersistence     = "persistence_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var (
	notFoundErrors = []error{
		entriesDomain.ErrEntryNotFound,
		goalsDomain.ErrGoalNotFound,
		taxonomyDomain.ErrCategoryMissing,
		taxonomyDomain.ErrSubjectMissing,
	}
	conflictErrors = []error{
		goalsDomain.ErrGoalInactive,
		taxonomyDomain.ErrCategoryExists,
		taxonomyDomain.ErrSubjectExists,
		entryCommands.ErrAlreadyEnriched,
	}
	invalidErrors = []error{
		contract.ErrInvalidStatus,
		entriesDomain.ErrEmptyContent,
		entriesDomain.ErrInvalidEntryType,
		entriesDomain.ErrEmptyEmoji,
		entryQueries.ErrUnknownView,
		goalsDomain.ErrEmptyTitle,
		goalsDomain.ErrInvalidTarget,
		goalsDomain.ErrInvalidPeriod,
		goalCommands.ErrZeroDelta,
		taxonomyDomain.ErrEmptySlug,
		taxonomyDomain.ErrEmptyName,
	}
)

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorStatus maps err to a status and a body safe to show to callers. Every
// classifier failure is a 400 with the classifier's short message.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		bindErr    *bindError
		persistErr *captureDomain.PersistenceError
	)
	switch {
	case errors.As(err, &bindErr):
		return http.StatusBadRequest, ErrorResponse{Error: bindErr.msg, Kind: string(classifierDomain.KindInvalidRequest)}
	case errors.Is(err, captureDomain.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Kind: KindUnauthenticated}
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: KindNotFound}
	case matchesAny(err, conflictErrors):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Kind: KindConflict}
	case matchesAny(err, invalidErrors):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: string(classifierDomain.KindInvalidRequest)}
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, ErrorResponse{Error: "could not save your entry", Kind: KindPersistence}
	}

	if kind := classifierDomain.KindOf(err); kind != classifierDomain.KindInternal {
		return http.StatusBadRequest, ErrorResponse{Error: classifierDomain.PublicMessage(err), Kind: string(kind)}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: string(classifierDomain.KindInternal)}
}

// fail writes the response for err and logs what callers do not see.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)

	var upstream *classifierDomain.UpstreamError
	switch {
	case errors.As(err, &upstream):
		h.logger.WarnContext(r.Context(), "classifier upstream error",
			"status", upstream.Status,
			"body", upstream.Body,
			"path", r.URL.Path,
		)
	case status >= http.StatusInternalServerError:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	default:
		h.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}
