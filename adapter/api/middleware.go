package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	captureDomain "github.com/felixgeelhaar/synapse/internal/capture/domain"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// CorrelationHeader carries a caller-chosen correlation ID.
const CorrelationHeader = "X-Correlation-ID"

type userIDKey struct{}

// requestContext copies chi's request ID and the caller's correlation ID
// into the context used by loggers and event metadata.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		ctx = observability.WithCorrelationID(ctx, r.Header.Get(CorrelationHeader))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// permissiveCORS answers preflight requests from any origin. Callers are
// browser clients on other hosts.
func permissiveCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", CorrelationHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

// requestTiming records one timing per request, tagged by route pattern so
// path IDs do not explode label cardinality.
func requestTiming(metrics observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.Timing(observability.MetricHTTPRequestDuration, time.Since(start),
				observability.T("method", r.Method),
				observability.T("route", route),
				observability.T("status", strconv.Itoa(status)),
			)
		})
	}
}

// authenticate resolves the bearer token to a user. Unknown or missing
// tokens get 401.
func authenticate(h *handler, tokens map[string]uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := tokens[bearerToken(r)]
			if !ok || userID == uuid.Nil {
				h.fail(w, r, captureDomain.ErrUnauthenticated)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			ctx = observability.WithUserID(ctx, userID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// userFrom returns the authenticated user, or uuid.Nil.
func userFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey{}).(uuid.UUID)
	return id
}
