package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/medlens/internal/analysis"
	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/internal/config"
	"github.com/jackzampolin/medlens/internal/home"
	"github.com/jackzampolin/medlens/internal/providers"
	"github.com/jackzampolin/medlens/internal/server/endpoints"
	"github.com/jackzampolin/medlens/internal/svcctx"
)

// Server is the medlens HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services
	cleanup  func()

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host overrides server.host from the config file
	Host string
	// Port overrides server.port from the config file
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the medlens home directory (scratch space for uploads)
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	services, cleanup, err := NewServices(cfg.ConfigManager, cfg.Home, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	current := cfg.ConfigManager.Get()
	if cfg.Host == "" {
		cfg.Host = current.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = current.Server.Port
	}

	s := &Server{
		registry:  services.Registry,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		services:  services,
		cleanup:   cleanup,
	}

	// Keys and models can change without a restart.
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		regCfg := c.ToProviderRegistryConfig()
		regCfg.Logger = cfg.Logger
		s.registry.Reload(regCfg)
		cfg.Logger.Info("provider registry reloaded from config")
	})

	s.endpointRegistry = endpoints.NewRegistry()

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireProvider)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: current.Server.AnalysisTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server. It blocks until the context is cancelled or
// the listener fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown drains in-flight requests and releases the rasterizer.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	if s.cleanup != nil {
		s.cleanup()
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Services returns the services attached to every request.
func (s *Server) Services() *svcctx.Services {
	return s.services
}

// Handler returns the root handler, for serving without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), s.services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireProvider rejects requests with 503 while no LLM provider is
// registered.
func (s *Server) requireProvider(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.registry.ListLLM()) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"` + analysis.MsgServiceUnavailable + `"}`))
			return
		}
		next(w, r)
	}
}
