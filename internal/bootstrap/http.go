package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/atelierweb/atelier-api/config"
	httpx "github.com/atelierweb/atelier-api/internal/http"
	"github.com/atelierweb/atelier-api/internal/ratelimit"
	"github.com/atelierweb/atelier-api/internal/service"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Intake:       cfg.Services.Intake,
		ContactAdmin: cfg.Services.ContactAdmin,
		Dashboard:    cfg.Services.Dashboard,
		Catalog:      cfg.Services.Catalog,
		Errors:       cfg.Services.Reporter,
		Auth:         cfg.Services.Auth,
		CookieDomain: appCfg.HTTP.CookieDomain,
		ReadLimiter:  cfg.Services.ReadLimiter,
		ReadRule: ratelimit.Rule{
			Window:      appCfg.RateLimit.Read.Window,
			MaxRequests: appCfg.RateLimit.Read.MaxRequests,
		},
		Identity: httpx.ClientIdentity{
			TrustProxyHeaders:  appCfg.HTTP.TrustProxyHeaders,
			UserAgentPrefixLen: appCfg.RateLimit.UserAgentPrefixLen,
		},
		MaxBodyBytes: appCfg.HTTP.MaxBodyBytes,
		Logger:       logger,
	}

	// NewRouter already wraps the mux in Recover and Logging
	handler := httpx.NewRouter(services)

	// Start server (logs "starting HTTP server" internally)
	server := startServer(logger, handler, appCfg.HTTP.Addr)

	return server
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Intake  *service.IntakeService
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(cfg.Context, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Drain in-flight notification goroutines before reporting stopped
	if cfg.Intake != nil {
		cfg.Intake.Wait()
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
