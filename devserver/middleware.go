package devserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/notify"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/token"
	"github.com/prometheus/client_golang/prometheus"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the verified access token claims
const ContextKeyClaims ContextKey = "claims"

func claimsFrom(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims
}

// requireRole accepts only requests carrying a valid access token for role.
// Failures use the same bodies as the marketplace API so the client's
// recovery path sees real-world responses.
func (s *Server) requireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
				return
			}

			claims, err := s.verifier.Verify(raw, token.TypeAccess)
			if err != nil {
				s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected access token")
				writeJSON(w, http.StatusUnauthorized, tokenNotValid())
				return
			}
			if claims.UserType != role {
				writeJSON(w, http.StatusForbidden, detail("You do not have permission to perform this action."))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenNotValid() map[string]string {
	return map[string]string{
		"detail": "Given token not valid for any token type",
		"code":   "token_not_valid",
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		evt := s.logger.Debug()
		if ww.Status() >= http.StatusInternalServerError {
			evt = s.logger.Error()
		}
		evt.Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg(notify.Red + "recovered from panic" + notify.ResetColor)
				writeJSON(w, http.StatusInternalServerError, errorBody(lmserrors.ErrInternal.Error()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type serverMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logins   *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_devserver_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_devserver_http_request_duration_seconds",
			Help:    "HTTP request latency, by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_devserver_logins_total",
			Help: "Login attempts, by role and result.",
		}, []string{"role", "result"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_devserver_token_refresh_total",
			Help: "Refresh token exchanges, by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.logins, m.refresh} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// The route pattern keeps label cardinality bounded (courses/{id}/ not courses/5/).
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, lmserrors.ErrTokenExpired):
		return "expired"
	default:
		return "rejected"
	}
}
