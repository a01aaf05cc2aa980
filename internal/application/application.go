package application

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envsettings/internal/api"
	"github.com/eugenenazirov/envsettings/internal/config"
	"github.com/eugenenazirov/envsettings/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage *storage.MemoryStorage
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application from the bootstrapped store and the server
// configuration decoded from it.
func New(cfg config.ServerConfig, settings *config.Store, logger *zap.Logger) (*App, error) {
	if settings == nil {
		return nil, errors.New("settings store is required")
	}

	store := storage.NewMemoryStorage()
	store.Publish(settings.Settings(), time.Now().UTC())

	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if v, err := settings.Get(config.CacheControlKey); err == nil {
		if cacheControl, ok := v.(string); ok {
			routerOpts = append(routerOpts, api.WithCacheControl(cacheControl))
		}
	}

	handler := api.NewHandler(store)
	apiRouter := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		storage: store,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler routes API requests and redirects the root path to the
// settings listing.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/settings", http.StatusFound)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
