package config

import "time"

// RateLimitRule describes one fixed-window admission ceiling.
type RateLimitRule struct {
	Window      time.Duration `env:"WINDOW"`
	MaxRequests int           `env:"MAX_REQUESTS"`
}

// RateLimitConfig contains request admission configuration.
//
// Two endpoint classes exist: contact-form submissions get a long window with
// a low ceiling, generic reads get a short window with a high ceiling.
type RateLimitConfig struct {
	// Submission covers POST /api/contact.
	Submission RateLimitRule `envPrefix:"RATE_LIMIT_SUBMISSION_"`

	// Read covers public read endpoints.
	Read RateLimitRule `envPrefix:"RATE_LIMIT_READ_"`

	// SweepInterval is how often the in-memory store drops expired windows.
	SweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"5m"`

	// UserAgentPrefixLen bounds how much of the client agent string is folded
	// into the rate-limit key. Keeps keys memory-bounded while separating
	// unrelated clients behind one NAT address.
	UserAgentPrefixLen int `env:"RATE_LIMIT_UA_PREFIX_LEN" envDefault:"64"`

	// UseRedis switches counters to the shared Redis store for
	// multi-instance deployments. The in-memory store is the default.
	UseRedis bool `env:"RATE_LIMIT_USE_REDIS" envDefault:"false"`
}

// Sanitize applies guardrails to rate limit configuration values.
func (c *RateLimitConfig) Sanitize() {
	if c.Submission.Window <= 0 {
		c.Submission.Window = 10 * time.Minute
	}
	if c.Submission.MaxRequests <= 0 {
		c.Submission.MaxRequests = 3
	}
	if c.Read.Window <= 0 {
		c.Read.Window = time.Minute
	}
	if c.Read.MaxRequests <= 0 {
		c.Read.MaxRequests = 60
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 5 * time.Minute
	}
	if c.UserAgentPrefixLen <= 0 {
		c.UserAgentPrefixLen = 64
	}
}
