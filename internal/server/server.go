package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Richardv10/food-blog/internal/handler"
	"github.com/Richardv10/food-blog/internal/imagestore"
	"github.com/Richardv10/food-blog/internal/middleware"
	"github.com/Richardv10/food-blog/internal/recipes"
	"github.com/Richardv10/food-blog/internal/store"
	ws "github.com/Richardv10/food-blog/internal/websocket"
	"github.com/Richardv10/food-blog/web"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Options struct {
	// SecureCookies forces the Secure flag on session cookies.
	SecureCookies bool
	// OriginPatterns lists extra hosts allowed to open the feed websocket.
	OriginPatterns []string
}

type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	recipeH   *handler.RecipeHandler
	createdH  *handler.CreatedHandler
	authH     *handler.AuthHandler
	adminH    *handler.AdminHandler
	sessions  *store.SessionStore
	users     *store.UserStore
	origins   []string
	logger    *slog.Logger
	staticFS  fs.FS
	authLimit func(http.Handler) http.Handler
}

func New(db *sql.DB, api recipes.API, images *imagestore.Store, hub *ws.Hub, opts Options, logger *slog.Logger) (*Server, error) {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	recipeStore := store.NewRecipeStore(db)
	libraryStore := store.NewLibraryStore(db)
	commentStore := store.NewCommentStore(db)
	createdStore := store.NewCreatedRecipeStore(db)

	svc := recipes.New(api, recipes.Stores{
		Recipes:  recipeStore,
		Library:  libraryStore,
		Comments: commentStore,
		Created:  createdStore,
	}, hub, images, logger)

	renderer, err := handler.NewRenderer(web.FS, images.URL, logger.With("component", "render"))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	staticFS, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	return &Server{
		db:       db,
		hub:      hub,
		recipeH:  handler.NewRecipeHandler(svc, renderer, logger),
		createdH: handler.NewCreatedHandler(svc, images, renderer, logger),
		authH:    handler.NewAuthHandler(userStore, sessionStore, renderer, opts.SecureCookies, logger),
		adminH: handler.NewAdminHandler(handler.AdminStores{
			Users:    userStore,
			Recipes:  recipeStore,
			Library:  libraryStore,
			Comments: commentStore,
			Created:  createdStore,
		}, renderer, logger),
		sessions:  sessionStore,
		users:     userStore,
		origins:   opts.OriginPatterns,
		logger:    logger,
		staticFS:  staticFS,
		authLimit: middleware.RateLimit(authRateLimit, authRateWindow),
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessions
}

// UserStore returns the user store for admin bootstrapping.
func (s *Server) UserStore() *store.UserStore {
	return s.users
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	user := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	// Public routes
	mux.HandleFunc("GET /{$}", s.recipeH.Home)
	mux.HandleFunc("GET /register", s.authH.RegisterPage)
	mux.Handle("POST /register", s.authLimit(http.HandlerFunc(s.authH.Register)))
	mux.HandleFunc("GET /login", s.authH.LoginPage)
	mux.Handle("POST /login", s.authLimit(http.HandlerFunc(s.authH.Login)))
	mux.HandleFunc("GET /search", s.recipeH.Search)
	mux.HandleFunc("POST /search", s.recipeH.Search)
	mux.HandleFunc("GET /recipes/{id}", s.recipeH.Detail)
	mux.HandleFunc("GET /random", s.recipeH.Random)
	mux.HandleFunc("GET /community/{id}", s.createdH.PublicDetail)

	// Ops
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins, s.logger.With("component", "websocket")))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.staticFS)))

	// Signed-in users
	mux.Handle("POST /logout", user(s.authH.Logout))
	mux.Handle("POST /recipes/{id}/save", user(s.recipeH.Save))
	mux.Handle("GET /recipes/{id}/share", user(s.recipeH.SharePage))
	mux.Handle("POST /recipes/{id}/share", user(s.recipeH.Share))
	mux.Handle("POST /recipes/{id}/unshare", user(s.recipeH.Unshare))
	mux.Handle("POST /recipes/{id}/delete", user(s.recipeH.Delete))
	mux.Handle("POST /recipes/{id}/comments", user(s.recipeH.Comment))
	mux.Handle("GET /my-recipes", user(s.recipeH.MyRecipes))

	// Created recipes; ownership is checked by the service
	mux.Handle("GET /create", user(s.createdH.New))
	mux.Handle("POST /create", user(s.createdH.Create))
	mux.Handle("GET /created/{id}", user(s.createdH.Detail))
	mux.Handle("GET /created/{id}/edit", user(s.createdH.Edit))
	mux.Handle("POST /created/{id}/edit", user(s.createdH.Update))
	mux.Handle("POST /created/{id}/delete", user(s.createdH.Delete))
	mux.Handle("POST /created/{id}/share", user(s.createdH.Share))
	mux.Handle("POST /created/{id}/unshare", user(s.createdH.Unshare))

	// Admin
	mux.Handle("GET /admin", admin(s.adminH.Index))
	mux.Handle("GET /admin/{table}", admin(s.adminH.Table))
	mux.Handle("POST /admin/users/{id}/delete", admin(s.adminH.DeleteUser))

	var h http.Handler = middleware.Metrics(mux)
	h = middleware.Session(s.sessions, s.users, s.logger.With("component", "session"))(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
