package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://atelierweb.fr").
	// Used for generating absolute URLs in notifications and auth redirects.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// TrustProxyHeaders controls whether X-Forwarded-For / X-Real-IP are
	// trusted for client identification. Only enable behind a reverse proxy
	// that strips inbound copies of these headers.
	TrustProxyHeaders bool `env:"HTTP_TRUST_PROXY_HEADERS" envDefault:"true"`

	// MaxBodyBytes bounds the size of inbound request bodies.
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" envDefault:"65536"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	const defaultMaxBody = 64 * 1024
	if h.MaxBodyBytes <= 0 {
		h.MaxBodyBytes = defaultMaxBody
	}
}
