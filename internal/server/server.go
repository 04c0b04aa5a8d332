package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/technotes/apiserver/config"
	"github.com/technotes/apiserver/internal/handlers"
	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/services"
	"github.com/technotes/apiserver/types"
)

const (
	// requestTimeout must stay below writeTimeout, otherwise the write
	// deadline drops the connection before the 504 is sent.
	requestTimeout = 10 * time.Second
	writeTimeout   = 15 * time.Second
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer  *http.Server
	router      *chi.Mux
	logger      logging.Logger
	stores      *Stores
	closeEvents func() error
}

// New wires stores, services and routes. Bearer authentication is enabled
// only when a JWT secret is configured.
func New(ctx context.Context, cfg config.Config, logger logging.Logger) (*Server, error) {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	events, closeEvents, err := OpenEvents(ctx, cfg.MQ, logger)
	if err != nil {
		_ = stores.Close(context.Background())
		return nil, err
	}

	userService := services.NewUserService(stores.Users, stores.Notes, events, logger, services.PasswordHashCost)
	noteService := services.NewNoteService(stores.Notes, stores.Users, events, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		newAccessLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)
	router.Get("/healthz", handlers.Healthz)

	var noteMiddleware, userMiddleware []func(http.Handler) http.Handler
	if cfg.Auth.Enabled() {
		authService := services.NewAuthService(stores.Users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		router.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authService, logger)
		})

		requireAuth := handlers.RequireAuth(authService)
		noteMiddleware = []func(http.Handler) http.Handler{
			requireAuth,
			handlers.RequireUser(userService, logger),
		}
		userMiddleware = []func(http.Handler) http.Handler{
			requireAuth,
			handlers.RequireUser(userService, logger, types.RoleAdmin, types.RoleManager),
		}
	} else {
		logger.Warn(ctx, "JWT_SECRET not set; /notes and /users are unauthenticated")
	}

	router.Route("/notes", func(r chi.Router) {
		handlers.NoteRouter(r, noteService, logger, noteMiddleware...)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, logger, userMiddleware...)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer:  httpServer,
		router:      router,
		logger:      logger,
		stores:      stores,
		closeEvents: closeEvents,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.closeEvents(); cerr != nil {
		s.logger.Warn(ctx, "close event broker", "error", cerr)
	}
	if cerr := s.stores.Close(ctx); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}
