package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ikolcov/learnit/internal/auth"
	"github.com/ikolcov/learnit/internal/models"
	"github.com/ikolcov/learnit/internal/storage"
	"github.com/ikolcov/learnit/internal/utils"
)

type AppConfig struct {
	Port            uint16
	ShutdownTimeout time.Duration
}

// Authenticator resolves the caller of a request into a user id.
type Authenticator interface {
	Authenticate(r *http.Request) (models.UserID, error)
}

type App struct {
	config        AppConfig
	storage       storage.Storage
	authenticator Authenticator
	logger        *slog.Logger
}

func New(config AppConfig, storage storage.Storage, authenticator Authenticator, logger *slog.Logger) *App {
	return &App{
		config:        config,
		storage:       storage,
		authenticator: authenticator,
		logger:        logger,
	}
}

// identifiedHandler serves a request on behalf of an already resolved user.
type identifiedHandler func(w http.ResponseWriter, r *http.Request, userId models.UserID)

// Route binds a method and a pattern, relative to the group it is mounted
// on, to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (a *App) postRoutes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/", Handler: a.identified(a.listPosts)},
		{Method: http.MethodPost, Pattern: "/", Handler: a.identified(a.createPost)},
		{Method: http.MethodPut, Pattern: "/{id}", Handler: a.identified(a.updatePost)},
		{Method: http.MethodDelete, Pattern: "/{id}", Handler: a.identified(a.deletePost)},
	}
}

func newRouter(logger *slog.Logger, groups map[string][]Route) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(requestLogFormatter{logger: logger}))
	r.Use(middleware.Recoverer)

	for prefix, routes := range groups {
		routes := routes
		r.Route(prefix, func(r chi.Router) {
			for _, route := range routes {
				r.Method(route.Method, route.Pattern, route.Handler)
			}
		})
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.Fail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// Handler returns the HTTP surface of the service.
func (a *App) Handler() http.Handler {
	r := newRouter(a.logger, map[string][]Route{
		"/api/posts": a.postRoutes(),
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = utils.Success(w, "", nil)
	})
	return r
}

func (a *App) identified(next identifiedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId, err := a.authenticator.Authenticate(r)
		if errors.Is(err, auth.ErrMissingToken) {
			utils.Unauthorized(w, "Access token not found")
			return
		} else if err != nil {
			a.logger.Debug("rejected access token", "error", err, "request_id", middleware.GetReqID(r.Context()))
			utils.Forbidden(w, "Invalid token")
			return
		}
		next(w, r, userId)
	}
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	a.logger.Error(op+" failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	utils.InternalError(w)
}

// Start serves until ctx is cancelled and then shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.config.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
