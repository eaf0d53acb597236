package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelierweb/atelier-api/config"
	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/observability/notify"
	"github.com/atelierweb/atelier-api/internal/observability/notify/mail"
	"github.com/atelierweb/atelier-api/internal/observability/notify/slack"
	"github.com/atelierweb/atelier-api/internal/observability/notify/webhook"
	"github.com/atelierweb/atelier-api/internal/observability/statsd"
	"github.com/atelierweb/atelier-api/internal/ratelimit"
	"github.com/atelierweb/atelier-api/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Intake        *service.IntakeService
	ContactAdmin  *service.ContactAdminService
	Dashboard     *service.DashboardService
	Catalog       *service.CatalogService
	Reporter      *service.ErrorReporter
	Auth          *service.AuthService
	ReadLimiter   *ratelimit.Limiter
	Observability ObservabilityContainer

	// MemoryStores are the memory-backed limiter stores that need the
	// periodic sweeper. Empty when counters live in Redis.
	MemoryStores []*ratelimit.MemoryStore
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink    *statsd.Client
	MetricsConfig  config.ObservabilityMetricsConfig
	Sinks          []notify.NamedSink
	NotifierConfig config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB          *sql.DB
	Redis       redis.UniversalClient
	ContactRepo *data.ContactRepo
	ErrorRepo   *data.ErrorLogRepo
	PackageRepo *data.PackageRepo
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "atelier",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:    metricsSink,
		MetricsConfig:  cfg.Metrics,
		Sinks:          buildNotificationSinks(obsLogger, cfg.Notifications),
		NotifierConfig: cfg.Notifications,
	}
}

// buildNotificationSinks assembles the best-effort contact notification
// fan-out. A sink that fails to initialise is logged and skipped; the rest
// keep working.
func buildNotificationSinks(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) []notify.NamedSink {
	if !cfg.Enabled {
		return nil
	}

	sinks := make([]notify.NamedSink, 0, 3)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:     cfg.Slack.WebhookURL,
			Channel:        cfg.Slack.Channel,
			Username:       cfg.Slack.Username,
			Timeout:        cfg.Timeout,
			RetryLimit:     cfg.RetryLimit,
			AdminURLPrefix: cfg.Slack.AdminURLPrefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, notify.NamedSink{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.Mail.Enabled {
		client, err := mail.NewClient(mail.Config{
			APIURL:     cfg.Mail.APIURL,
			APIKey:     cfg.Mail.APIKey,
			FromName:   cfg.Mail.FromName,
			FromEmail:  cfg.Mail.FromEmail,
			ReplyTo:    cfg.Mail.ReplyTo,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise mail notifier", "error", err)
		} else {
			sinks = append(sinks, notify.NamedSink{
				Name: "mail",
				Sink: client,
			})
		}
	}

	if cfg.Webhook.Enabled {
		client, err := webhook.NewClient(webhook.Config{
			URL:          cfg.Webhook.URL,
			BodyTemplate: cfg.Webhook.BodyTemplate,
			Headers:      cfg.Webhook.Headers,
			Timeout:      cfg.Timeout,
			RetryLimit:   cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise webhook notifier", "error", err)
		} else {
			sinks = append(sinks, notify.NamedSink{
				Name: "webhook",
				Sink: client,
			})
		}
	}

	return sinks
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redis redis.UniversalClient) *serviceRepositories {
	return &serviceRepositories{
		DB:          db,
		Redis:       redis,
		ContactRepo: data.NewContactRepo(db),
		ErrorRepo:   data.NewErrorLogRepo(db),
		PackageRepo: data.NewPackageRepo(db),
	}
}

// limiterSet holds the admission limiters, one per endpoint class so a
// client's form submissions and catalog reads never share a window.
type limiterSet struct {
	submit *ratelimit.Limiter
	read   *ratelimit.Limiter
	memory []*ratelimit.MemoryStore
}

func buildLimiters(cfg config.RateLimitConfig, redisClient redis.UniversalClient, logger *slog.Logger) limiterSet {
	if cfg.UseRedis && redisClient != nil {
		return limiterSet{
			submit: ratelimit.NewLimiter(ratelimit.NewRedisStoreWithPrefix(redisClient, "ratelimit:submit:"), logger),
			read:   ratelimit.NewLimiter(ratelimit.NewRedisStoreWithPrefix(redisClient, "ratelimit:read:"), logger),
		}
	}

	submitStore := ratelimit.NewMemoryStore()
	readStore := ratelimit.NewMemoryStore()
	return limiterSet{
		submit: ratelimit.NewLimiter(submitStore, logger),
		read:   ratelimit.NewLimiter(readStore, logger),
		memory: []*ratelimit.MemoryStore{submitStore, readStore},
	}
}

// DomainServicesOptions groups inputs for domain service wiring.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) ServiceContainer {
	if opts == nil {
		return ServiceContainer{}
	}
	svcLogger := opts.Logger
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	limiters := buildLimiters(appCfg.RateLimit, opts.Repos.Redis, svcLogger)

	reporter := service.NewErrorReporter(service.ErrorReporterOptions{
		Repo:   opts.Repos.ErrorRepo,
		Logger: svcLogger,
	})

	intakeService := service.NewIntakeService(service.IntakeServiceOptions{
		Contacts: opts.Repos.ContactRepo,
		Limiter:  limiters.submit,
		Rule: ratelimit.Rule{
			Window:      appCfg.RateLimit.Submission.Window,
			MaxRequests: appCfg.RateLimit.Submission.MaxRequests,
		},
		Reporter:            reporter,
		Sinks:               opts.Observability.Sinks,
		Metrics:             opts.Observability.MetricsSink,
		Logger:              svcLogger,
		DefaultSource:       appCfg.Intake.DefaultSource,
		BlockedEmailDomains: appCfg.Intake.BlockedEmailDomains,
		NotifyTimeout:       appCfg.Observability.Notifications.Timeout,
	})

	authService := BuildAuthService(AuthConfig{
		Auth:        appCfg.Auth,
		RedisClient: opts.Repos.Redis,
		Logger:      svcLogger,
	})

	return ServiceContainer{
		Intake:        intakeService,
		ContactAdmin:  service.NewContactAdminService(service.ContactAdminServiceOptions{Contacts: opts.Repos.ContactRepo}),
		Dashboard:     service.NewDashboardService(service.DashboardServiceOptions{Contacts: opts.Repos.ContactRepo}),
		Catalog:       service.NewCatalogService(opts.Repos.PackageRepo),
		Reporter:      reporter,
		Auth:          authService,
		ReadLimiter:   limiters.read,
		Observability: opts.Observability,
		MemoryStores:  limiters.memory,
	}
}

// NewServices wires the full service graph from infrastructure dependencies.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var obsCfg config.ObservabilityConfig
	if deps.Config != nil {
		obsCfg = deps.Config.Observability
	}
	observability := buildObservability(logger, obsCfg)
	repos := buildRepositories(deps.DB, deps.RedisClient)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Observability: observability,
		Config:        deps.Config,
		Logger:        logger,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				if deps.logger != nil {
					deps.logger.WarnContext(
						ctx,
						"dropping background service error",
						"service",
						descriptor.name,
						"error",
						errMsg,
					)
				} else {
					slog.Default().WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
				}
			}
		}
	}()

	if deps.logger != nil {
		deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	} else {
		slog.Default().InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	}

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newSweeperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeSweeper,
		name: "rate limit sweeper",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			stores := deps.cfg.Services.MemoryStores
			if len(stores) == 0 {
				// Redis-backed counters expire on their own.
				return nil
			}
			interval := 5 * time.Minute
			if deps.cfg.Config != nil && deps.cfg.Config.RateLimit.SweepInterval > 0 {
				interval = deps.cfg.Config.RateLimit.SweepInterval
			}
			runMemoryStoreSweepers(ctx, stores, interval, deps.logger)
			return nil
		},
	}
}

// runMemoryStoreSweepers runs one sweeper per store and blocks until all stop.
func runMemoryStoreSweepers(ctx context.Context, stores []*ratelimit.MemoryStore, interval time.Duration, logger *slog.Logger) {
	done := make(chan struct{}, len(stores))
	for _, store := range stores {
		go func(s *ratelimit.MemoryStore) {
			s.Run(ctx, interval, logger)
			done <- struct{}{}
		}(store)
	}
	for range stores {
		<-done
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newSweeperBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		intake:      cfg.Services.Intake,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	modes := []config.ServiceMode{
		config.ServiceModeHTTP,
		config.ServiceModeSweeper,
	}

	count := 0
	for _, mode := range modes {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	intake      *service.IntakeService
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	// Gracefully stop HTTP server if running
	if cfg.httpServer != nil {
		// Create a timeout context for HTTP shutdown
		shutdownCtx, cancel := context.WithTimeout(cfg.ctx, shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Intake:  cfg.intake,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
