package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vibeshare/internal/handler"
	"vibeshare/internal/httputil"
	"vibeshare/internal/service"
	authmw "vibeshare/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler  *handler.AuthHandler
	UserHandler  *handler.UserHandler
	PostHandler  *handler.PostHandler
	TokenService *service.TokenService
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/googlelogin", cfg.AuthHandler.GoogleLogin)
		r.Post("/send-code", cfg.AuthHandler.SendCode)
		r.Post("/login-with-code", cfg.AuthHandler.LoginWithCode)

		r.With(authmw.AuthMiddleware(cfg.TokenService)).Post("/update-password", cfg.AuthHandler.UpdatePassword)
	})

	// Public user and post reads
	r.Get("/user/search", cfg.UserHandler.Search)
	r.Get("/user/{id}/following", cfg.UserHandler.GetFollowing)
	r.Get("/api/posts", cfg.PostHandler.GetAll)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.TokenService))

		// User endpoints
		r.Get("/user/all", cfg.UserHandler.GetAll)
		r.Put("/user/profile", cfg.UserHandler.UpdateProfile)
		r.Post("/user/profile-picture", cfg.UserHandler.UploadProfilePicture)
		r.Post("/user/cover-picture", cfg.UserHandler.UploadCoverPicture)

		// Favorites
		r.Post("/user/favorites/{postId}", cfg.UserHandler.AddFavorite)
		r.Delete("/user/favorites/{postId}", cfg.UserHandler.RemoveFavorite)
		r.Get("/user/favorites/{userId}", cfg.UserHandler.GetFavorites)

		// Follow graph
		r.Post("/user/{id}/follow", cfg.UserHandler.Follow)
		r.Post("/user/{id}/unfollow", cfg.UserHandler.Unfollow)
		r.Get("/user/{id}/followers", cfg.UserHandler.GetFollowers)
		r.Get("/user/{id}", cfg.UserHandler.GetByID)

		// Post endpoints
		r.Post("/api/posts", cfg.PostHandler.Create)
		r.Post("/api/posts/upload", cfg.PostHandler.UploadMedia)
		r.Get("/api/posts/user", cfg.PostHandler.GetOwn)
		r.Post("/api/posts/like", cfg.PostHandler.ToggleLike)
		r.Post("/api/posts/{postId}/comment", cfg.PostHandler.AddComment)
		r.Get("/api/posts/{id}", cfg.PostHandler.GetByID)
		r.Delete("/api/posts/{id}", cfg.PostHandler.Delete)
	})

	return r
}
