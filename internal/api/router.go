/**
 * @description
 * This file sets up the HTTP router using the go-chi/chi router. It defines
 * the API routes, applies middleware for logging, CORS, and authentication,
 * and maps the routes to their corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers all routes.
func NewRouter(h *Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Get("/movies", h.handleListMovies)
		r.Get("/movies/{movieID}", h.handleGetMovie)
		r.Get("/movies/{movieID}/engagement", h.handleEngagement)
		r.Get("/movies/{movieID}/comments", h.handleListComments)
		r.Get("/subscription-stats", h.handleSubscriptionStats)

		// Protected routes that require authentication
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtSecret))

			r.Post("/movies/{movieID}/like", h.handleLike)
			r.Delete("/movies/{movieID}/like", h.handleUnlike)
			r.Post("/movies/{movieID}/dislike", h.handleDislike)
			r.Delete("/movies/{movieID}/dislike", h.handleUndislike)
			r.Post("/movies/{movieID}/toggle-like", h.handleToggleLike)
			r.Post("/movies/{movieID}/toggle-dislike", h.handleToggleDislike)
			r.Get("/movies/{movieID}/reaction", h.handleReactionStatus)
			r.Post("/movies/{movieID}/comments", h.handleAddComment)

			r.Get("/watchlist", h.handleGetWatchlist)
			r.Post("/watchlist/{movieID}", h.handleAddToWatchlist)
			r.Delete("/watchlist/{movieID}", h.handleRemoveFromWatchlist)

			r.Post("/subscribe", h.handleSubscribe)
			r.Post("/subscription/extend", h.handleExtend)
			r.Post("/subscription/plan", h.handleUpdatePlan)
			r.Post("/subscription/cancel", h.handleCancel)
			r.Post("/subscription/reactivate", h.handleReactivate)
			r.Get("/subscription/history", h.handleSubscriptionHistory)
			r.Post("/preferred-genre", h.handleSetPreferredGenre)
		})
	})

	return r
}
