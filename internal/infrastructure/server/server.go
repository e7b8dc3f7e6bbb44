package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/OverlayPicker/backend/internal/http"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/api/middleware"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/catalog"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/eventbus"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	config   *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	index    *overlay.MemoryIndex
	store    *selection.Store
	registry *manager.Registry
	events   *eventbus.Bus[manager.AppliedEvent]
	router   *gin.Engine
	handler  http.Handler
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing Overlay Picker",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("packs_dir", cfg.Overlay.PacksDir),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("overlay-picker", logger.Component("tracing"))

	backend, err := newBackend(cfg.Store)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	settings := selection.BreakerSettings()
	settings.OnStateChange = metrics.BreakerStateChanged
	breaker := resilience.New("selection-"+backend.Name(), settings)

	store := selection.NewStore(backend, selection.Config{
		Key:         cfg.Store.Key,
		MaxAttempts: cfg.Store.MaxAttempts,
	}, breaker, logger.Component("selection"), metrics)

	index, resources := loadPacks(ctx, cfg.Overlay.PacksDir, logger)

	catalogCfg, err := catalog.LoadConfig(cfg.Overlay.CatalogConfig)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("catalog config: %w", err)
	}

	events := eventbus.New[manager.AppliedEvent]()
	registry := manager.NewRegistry()
	for _, def := range manager.Builtin(catalogCfg) {
		m, err := manager.New(def, manager.Dependencies{
			Index:           index,
			Resolver:        resources,
			Store:           store,
			Events:          events,
			Logger:          logger.Component("manager"),
			Observer:        metrics,
			CatalogObserver: metrics,
		})
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("domain %s: %w", def.Domain.ID, err)
		}
		if err := registry.Register(m); err != nil {
			tracer.Close()
			return nil, err
		}
	}
	logger.Info("Registered option managers", zap.Any("stats", registry.Stats()))

	// The document protocol is only served from a local backend
	var kv selection.Backend
	if cfg.Store.Backend != config.BackendHTTP {
		kv = backend
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		index:    index,
		store:    store,
		registry: registry,
		events:   events,
	}
	s.router = s.newRouter(kv)
	s.handler = middleware.Compress(s.router)

	s.warm(ctx)

	logger.Info("Server initialized successfully")
	return s, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	return logging.New(logCfg)
}

func newBackend(cfg config.StoreConfig) (selection.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return selection.NewMemoryBackend(), nil
	case config.BackendFile:
		backend, err := selection.NewFileBackend(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.BackendHTTP:
		httpCfg := selection.DefaultHTTPConfig(cfg.URL)
		if cfg.Timeout > 0 {
			httpCfg.Timeout = cfg.Timeout
		}
		return selection.NewHTTPBackend(httpCfg), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// loadPacks falls back to an empty, unavailable index when the packs
// directory cannot be scanned
func loadPacks(ctx context.Context, dir string, logger *logging.Logger) (*overlay.MemoryIndex, *overlay.ResourceStore) {
	index, resources, err := overlay.LoadPacks(ctx, dir, logger.Component("overlay"))
	if err != nil {
		logger.Warn("Overlay packs unavailable", zap.String("dir", dir), zap.Error(err))
		index, resources = overlay.NewMemoryIndex(), overlay.NewResourceStore()
		index.SetAvailable(false)
	}
	return index, resources
}

func (s *Server) newRouter(kv selection.Backend) *gin.Engine {
	if !s.config.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.Logger(s.logger.Component("http")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.config.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.config.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.config.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = s.config.RateLimit.RequestsPerSecond
		rl.Burst = s.config.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(s.registry, kv, s.metrics, s.logger.Component("api"))
	handlers.Register(router)

	wsHandler := ws.NewHandler(s.events, s.registry, s.metrics, s.logger.Component("ws"))
	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return router
}

// warm applies the persisted selection to the overlay index, then builds
// every available catalog once so the first request is fast
func (s *Server) warm(ctx context.Context) {
	if err := s.registry.RestoreAll(ctx); err != nil {
		s.logger.Warn("Restoring persisted selection failed", zap.Error(err))
	}

	catalogs, err := s.registry.FetchAll(ctx, false)
	if err != nil {
		s.logger.Warn("Initial catalog fetch failed", zap.Error(err))
		return
	}
	for domain, options := range catalogs {
		s.logger.Info("Catalog ready", zap.String("domain", domain), zap.Int("options", len(options)))
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the option managers
func (s *Server) Registry() *manager.Registry {
	return s.registry
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Server.Addr(),
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...", zap.Duration("timeout", s.config.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases background resources and flushes the logger
func (s *Server) Close() error {
	s.tracer.Close()
	_ = s.logger.Sync()
	return nil
}
