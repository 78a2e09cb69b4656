// Package devserver is an in-memory implementation of the marketplace REST API
// for local development and end-to-end tests. It issues and verifies real
// HS256 tokens with the same claims, status codes and error bodies as the
// production API.
package devserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-lms-client/internal/config"
	"github.com/jrsteele09/go-lms-client/notify"
	"github.com/jrsteele09/go-lms-client/session"
	tokenjwt "github.com/jrsteele09/go-lms-client/token/jwt"
	"github.com/jrsteele09/go-lms-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config is the part of the application config the server needs.
type Config interface {
	config.EnvConfig
	config.DevServerConfig
}

type Server struct {
	env      string
	router   chi.Router
	users    users.UserRepo
	catalog  *catalog
	creator  *tokenjwt.Creator
	verifier *tokenjwt.Verifier
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *serverMetrics
}

func New(cfg Config, userRepo users.UserRepo, logger zerolog.Logger) (*Server, error) {
	secret := cfg.GetDevServerSecret()
	if secret == "" {
		return nil, fmt.Errorf("[Server New] signing secret is required")
	}
	signer := tokenjwt.NewHMACSigner(secret)

	registry := prometheus.NewRegistry()
	metrics, err := newServerMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to register metrics: %w", err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		users:    userRepo,
		catalog:  newCatalog(),
		creator:  tokenjwt.NewCreator(signer, cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL()),
		verifier: tokenjwt.NewVerifier(signer),
		logger:   logger,
		registry: registry,
		metrics:  metrics,
	}
	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/student/register/", s.registerHandler(session.RoleStudent))
		r.Post("/auth/teacher/register/", s.registerHandler(session.RoleTeacher))
		r.Post("/auth/student/login/", s.loginHandler(session.RoleStudent))
		r.Post("/auth/teacher/login/", s.loginHandler(session.RoleTeacher))
		r.Post("/auth/token/refresh/", s.refreshHandler)

		r.Get("/categories/", s.listCategoriesHandler)
		r.Get("/categories/{id}/", s.getCategoryHandler)
		r.Get("/courses/", s.listCoursesHandler)
		r.Get("/courses/{id}/", s.getCourseHandler)
		r.Get("/courses/{id}/content/", s.getCourseHandler)
		r.Get("/reviews/course/{id}/", s.courseReviewsHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(session.RoleStudent))
			r.Post("/courses/{id}/review/", s.reviewCourseHandler)
			r.Post("/student/enroll/", s.enrollHandler)
			r.Get("/student/courses/", s.myCoursesHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(session.RoleTeacher))
			r.Get("/teacher/profile/", s.teacherProfileHandler)
			r.Put("/teacher/profile/", s.updateTeacherProfileHandler)
			r.Get("/teacher/courses/", s.teacherCoursesHandler)
			r.Post("/teacher/courses/", s.createCourseHandler)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
	})
	s.router = r
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logRoute(s.logger, method, route)
		return nil
	})
}

var methodColors = map[string]string{
	http.MethodGet:    notify.Blue,
	http.MethodPost:   notify.Green,
	http.MethodPut:    notify.Yellow,
	http.MethodDelete: notify.Red,
}

func logRoute(logger zerolog.Logger, method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = notify.Gray
	}
	logger.Info().Msgf("[%s] %s", color+paddedMethod+notify.ResetColor, strings.TrimSuffix(path, "/*"))
}

// NowTimeFunc returns the server clock. It can be overridden in tests.
var NowTimeFunc = time.Now
