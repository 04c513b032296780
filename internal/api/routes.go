package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(RecoveryMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)
		r.Get("/catalogs", h.Catalogs)
		r.Post("/auth/code", h.RequestCode)
		r.Post("/auth/login", h.Login)
		r.Get("/milestones", h.Milestones)
		r.Get("/activities", h.Activities)
		r.Get("/medical", h.Medical)

		// Protected routes (session token required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.sessions))
			r.Post("/auth/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.PatchProfile)
			r.Post("/onboarding", h.Onboarding)
			r.Post("/onboarding/complete", h.CompleteOnboarding)
			r.Get("/dashboard", h.Dashboard)
			r.Post("/milestones/{id}/toggle", h.ToggleMilestone)
			r.Post("/medical/{id}/toggle", h.ToggleEvent)
			r.Get("/moments", h.ListMoments)
			r.Post("/moments", h.AddMoment)
			r.Post("/moments/{id}/love", h.ToggleLoved)
			r.Delete("/moments/{id}", h.DeleteMoment)
			r.Get("/checkins", h.ListCheckIns)
			r.Post("/checkins", h.SaveCheckIn)
			r.Get("/measurements", h.Measurements)
			r.Get("/measurements/percentiles", h.Percentiles)
		})
	})

	return r
}
