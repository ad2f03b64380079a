package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds the Chi router. The health endpoint is unauthenticated;
// every engine route requires bearer auth plus an identity header. Rate
// limiting is global: 120 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db, redisClient pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Use(RequireUser)

		r.Route("/api/v1/itineraries", func(r chi.Router) {
			r.Post("/", handlers.CreateItinerary)
			r.Get("/", handlers.ListItineraries)
			r.Get("/{id}", handlers.GetItinerary)
			r.Put("/{id}", handlers.ReplaceItinerary)
			r.Delete("/{id}", handlers.DeleteItinerary)
			r.Post("/{id}/items", handlers.AddItem)
			r.Put("/{id}/items/{itemID}", handlers.UpdateItem)
			r.Delete("/{id}/items/{itemID}", handlers.RemoveItem)
		})

		r.Route("/api/v1/routes", func(r chi.Router) {
			r.Get("/", handlers.ListFeaturedRoutes)
			r.Post("/{id}/apply", handlers.ApplyFeaturedRoute)
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
