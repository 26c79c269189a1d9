package rest

import (
	"net/http"

	"insights-backend/application/ports"
	"insights-backend/infrastructure/di"
	"insights-backend/interfaces/http/rest/handlers"
	"insights-backend/interfaces/http/rest/middleware"
	pkgerrors "insights-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	c := rt.container
	errorHandler := pkgerrors.NewErrorHandler(c.Logger, c.Config.IsDevelopment())

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(c.Logger))
	if c.Metrics != nil {
		router.Use(middleware.Metrics(c.Metrics))
	}

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   c.Config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	health := handlers.NewHealthHandler(map[string]ports.HealthChecker{
		"store":   c.Readiness.Store,
		"capture": c.Readiness.Capture,
	}, c.Logger)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)

	if c.Config.EnableMetrics && c.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", c.Metrics.Handler())
	}

	activity := handlers.NewActivityHandler(c.CommandBus, c.QueryBus, errorHandler, c.Logger)
	insights := handlers.NewInsightHandler(c.CommandBus, c.QueryBus, errorHandler, c.Logger)
	notifications := handlers.NewNotificationHandler(c.CommandBus, errorHandler)

	limited := middleware.RateLimit(c.RateLimiter, c.Logger)

	router.Route("/api", func(r chi.Router) {
		r.Route("/activity", func(r chi.Router) {
			r.Get("/", activity.GetActivity)
			r.With(limited, middleware.RequireBearer(c.Validator, c.Logger)).Post("/", activity.CaptureActivity)
			r.With(limited).Patch("/", insights.UpdateInsightStatus)
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", insights.ListInsights)
			r.With(limited).Post("/", insights.GenerateInsights)
			r.With(limited).Patch("/", insights.UpdateInsightStatus)
			r.With(limited).Patch("/{id}", insights.UpdateInsightStatus)
		})

		r.With(limited).Post("/notification", notifications.SendNotification)
	})

	return router
}
