package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"hadiqa-backend/internal/handlers"
	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	feedHandler *handlers.FeedHandler,
	interactionsHandler *handlers.InteractionsHandler,
	offlineHandler *handlers.OfflineHandler,
	viewHandler *handlers.ViewHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Passcode rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Consumer Routes (keyed by install id) ────
		r.Group(func(r chi.Router) {
			r.Use(middleware.InstallID)

			r.Route("/feed", func(r chi.Router) {
				r.Get("/home", feedHandler.Home)
				r.Get("/recommended", feedHandler.Recommended)
				r.Get("/trending", feedHandler.Trending)
				r.Get("/likes", feedHandler.Likes)
				r.Get("/saved", feedHandler.Saved)
				r.Get("/hidden", feedHandler.Hidden)
				r.Get("/continue-watching", feedHandler.ContinueWatching)
				r.Get("/search", feedHandler.Search)
				r.Get("/category/{name}", feedHandler.Category)
			})

			r.Get("/videos/{id}", feedHandler.GetVideo)

			r.Route("/interactions", func(r chi.Router) {
				r.Get("/", interactionsHandler.Get)
				r.Post("/like/{id}", interactionsHandler.Like)
				r.Post("/dislike/{id}", interactionsHandler.Dislike)
				r.Post("/restore/{id}", interactionsHandler.Restore)
				r.Post("/save/{id}", interactionsHandler.Save)
				r.Post("/save-category/{name}", interactionsHandler.SaveCategory)
				r.Put("/progress/{id}", interactionsHandler.Progress)
			})

			r.Route("/downloads", func(r chi.Router) {
				r.Get("/", offlineHandler.List)
				r.Post("/", offlineHandler.Start)
				r.Get("/{id}/file", offlineHandler.Serve)
				r.Delete("/{id}", offlineHandler.Delete)
			})

			r.Route("/view", func(r chi.Router) {
				r.Get("/", viewHandler.Get)
				r.Post("/navigate", viewHandler.Navigate)
				r.Post("/offline", viewHandler.StartOffline)
				r.Post("/overlays/{kind}", viewHandler.OpenOverlay)
				r.Delete("/overlays/{kind}", viewHandler.CloseOverlay)
			})
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/auth", adminHandler.Auth)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/videos", adminHandler.ListVideos)
				r.Post("/videos", adminHandler.Register)
				r.Put("/videos/{id}", adminHandler.Update)
				r.Put("/videos/{id}/featured", adminHandler.ToggleFeatured)
				r.Delete("/videos/{id}", adminHandler.Delete)
				r.Get("/categories", adminHandler.Categories)
				r.Post("/suggest-metadata", adminHandler.SuggestMetadata)
				r.Post("/suggest-tags", adminHandler.SuggestTags)
				r.Get("/diagnostics", adminHandler.Diagnostics)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
