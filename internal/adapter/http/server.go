// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"macrolens/internal/app"
	"macrolens/internal/config"
	"macrolens/internal/ratelimit"
)

// Services bundles the application services the adapter routes to.
type Services struct {
	Auth     *app.AuthService
	Profiles *app.ProfileService
	Foods    *app.FoodService
	Summary  *app.SummaryService
	Streaks  *app.StreakService
}

// Options configures cross-cutting behavior of the Server.
type Options struct {
	Logger      *zap.Logger
	Limiter     ratelimit.Limiter
	RateLimits  map[string]config.RatePolicy
	CORSOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	profiles *app.ProfileService
	foods    *app.FoodService
	summary  *app.SummaryService
	streaks  *app.StreakService

	log         *zap.Logger
	limiter     ratelimit.Limiter
	limits      map[string]config.RatePolicy
	corsOrigins []string
	trustProxy  bool
}

// New creates a Server wired to the given application services.
func New(svc Services, opts Options) *Server {
	s := &Server{
		auth:        svc.Auth,
		profiles:    svc.Profiles,
		foods:       svc.Foods,
		summary:     svc.Summary,
		streaks:     svc.Streaks,
		log:         opts.Logger,
		limiter:     opts.Limiter,
		limits:      opts.RateLimits,
		corsOrigins: opts.CORSOrigins,
		trustProxy:  opts.TrustProxy,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.limits == nil {
		s.limits = config.DefaultRateLimits()
	}
	if len(s.corsOrigins) == 0 {
		s.corsOrigins = []string{"*"}
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         int((5 * time.Minute).Seconds()),
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(s.rateLimit(config.ClassAuth)).Post("/calculate-targets", s.handleCalculateTargets)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.With(s.rateLimit(config.ClassDBRead)).Get("/protected", s.handleProtected)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(config.ClassUserProfile))
			r.Post("/user_profiles", s.handleSaveProfile)
			r.Get("/user_profiles", s.handleGetProfile)
			r.Post("/recalculate", s.handleRecalculate)
		})

		r.With(s.rateLimit(config.ClassFileUpload), s.rateLimit(config.ClassAIAnalysis)).Post("/consumed", s.handleConsumed)
		r.With(s.rateLimit(config.ClassAIAnalysis)).Post("/edit_with_ai", s.handleEditWithAI)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(config.ClassDBWrite))
			r.Post("/manual_consumed", s.handleManualConsumed)
			r.Put("/edit_consumed_food", s.handleEditConsumed)
			r.Delete("/delete_consumed_food", s.handleDeleteConsumed)
			r.Post("/update_streak", s.handleUpdateStreak)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(config.ClassDBRead))
			r.Get("/consumed/{id}", s.handleGetConsumed)
			r.Get("/recently_eaten", s.handleRecentlyEaten)
			r.Get("/full_history", s.handleFullHistory)
			r.Get("/weekly_recently_eaten", s.handleWeeklyRecentlyEaten)
			r.Get("/daily_nutrition_summary", s.handleDailySummary)
			r.Get("/weekly_daily_nutrition_summary", s.handleWeeklySummary)
			r.Get("/get_streak", s.handleGetStreak)
		})
	})

	return withNoCache(r)
}
