package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
	"github.com/atelierweb/atelier-api/internal/ratelimit"
	"github.com/atelierweb/atelier-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Intake       *service.IntakeService
	ContactAdmin *service.ContactAdminService
	Dashboard    *service.DashboardService
	Catalog      *service.CatalogService
	Errors       *service.ErrorReporter
	Auth         *service.AuthService
	CookieDomain string

	// ReadLimiter covers the public read endpoints. The submission ceiling is
	// enforced inside the intake pipeline, not by middleware.
	ReadLimiter *ratelimit.Limiter
	ReadRule    ratelimit.Rule

	Identity     ClientIdentity
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	contactHandlers := &ContactHandlers{
		Svc:          services.Intake,
		Identity:     services.Identity,
		MaxBodyBytes: services.MaxBodyBytes,
		Logger:       logger,
	}
	packageHandlers := &PackageHandlers{Svc: services.Catalog}
	adminHandlers := &AdminHandlers{
		Contacts:  services.ContactAdmin,
		Dashboard: services.Dashboard,
		Errors:    services.Errors,
		Logger:    logger,
	}
	var authHandlers *AuthHandlers
	if services.Auth != nil {
		authHandlers = &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger}
	}

	readLimit := RateLimit(RateLimitParams{
		Limiter:  services.ReadLimiter,
		Rule:     services.ReadRule,
		Identity: services.Identity,
	})

	registerContactRoutes(mux, contactHandlers)
	registerPackageRoutes(mux, packageHandlers, readLimit)
	registerAdminRoutes(mux, adminHandlers, services.Auth)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if authHandlers != nil {
		registerAuthRoutes(mux, authHandlers)
	}

	handler := Logging(logger)(mux)
	return Recover(logger)(handler)
}

func registerContactRoutes(mux *http.ServeMux, h *ContactHandlers) {
	mux.HandleFunc("POST /api/contact", h.Submit)
}

func registerPackageRoutes(mux *http.ServeMux, h *PackageHandlers, limit func(http.Handler) http.Handler) {
	mux.Handle("GET /api/packages", limit(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/packages/{slug}", limit(http.HandlerFunc(h.GetBySlug)))
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers, auth *service.AuthService) {
	// Admin routes stay open when auth is not configured (local development).
	wrap := func(hh http.Handler) http.Handler {
		if auth != nil {
			return RequireRole(auth, domainauth.RoleAdmin)(hh)
		}
		return hh
	}

	mux.Handle("GET /api/admin/contacts", wrap(http.HandlerFunc(h.ListContacts)))
	mux.Handle("GET /api/admin/contacts/{id}", wrap(http.HandlerFunc(h.GetContact)))
	mux.Handle("PATCH /api/admin/contacts/{id}/status", wrap(http.HandlerFunc(h.UpdateContactStatus)))
	mux.Handle("DELETE /api/admin/contacts/{id}", wrap(http.HandlerFunc(h.DeleteContact)))
	mux.Handle("GET /api/admin/dashboard", wrap(http.HandlerFunc(h.GetDashboard)))
	mux.Handle("GET /api/admin/errors", wrap(http.HandlerFunc(h.ListErrors)))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}
