package server

import (
	"context"
	"net/http"
	"time"

	"github.com/lfca/church-admin-be/internal/assist"
	"github.com/lfca/church-admin-be/internal/auth"
	"github.com/lfca/church-admin-be/internal/blob"
	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/config"
	"github.com/lfca/church-admin-be/internal/http/handlers"
	"github.com/lfca/church-admin-be/internal/middleware"
	"github.com/lfca/church-admin-be/internal/session"
	"github.com/lfca/church-admin-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Deps are the constructed collaborators the route set is wired around.
type Deps struct {
	Cache    *cache.Cache
	Sessions *session.Store
	Users    storage.UserStore
	Tokens   *auth.TokenManager
	Assist   *assist.Client   // nil disables assist endpoints
	Photos   *blob.PhotoStore // nil disables photo upload
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	mux := http.NewServeMux()

	protect := func(next http.HandlerFunc) http.HandlerFunc {
		wrapped := middleware.Authenticate(deps.Tokens, next)
		return func(w http.ResponseWriter, r *http.Request) {
			wrapped.ServeHTTP(w, r)
		}
	}

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(deps.Sessions, deps.Users, deps.Tokens).Register(mux)
	handlers.NewMembersHandler(deps.Cache, deps.Photos).Register(mux, protect)
	handlers.NewAttendanceHandler(deps.Cache).Register(mux, protect)
	handlers.NewFinanceHandler(deps.Cache).Register(mux, protect)
	handlers.NewUndoHandler(deps.Cache).Register(mux, protect)
	handlers.NewAssistHandler(deps.Assist, deps.Cache).Register(mux, protect)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
