package config

import "strings"

// IntakeConfig contains contact intake configuration.
type IntakeConfig struct {
	// DefaultSource is recorded on contacts that arrive without a referrer.
	DefaultSource string `env:"INTAKE_DEFAULT_SOURCE" envDefault:"site-vitrine"`

	// BlockedEmailDomains lists registrable domains (eTLD+1) whose submissions
	// are treated as spam. Comparison happens after normalizing the email
	// domain to its registrable form.
	BlockedEmailDomains []string `env:"INTAKE_BLOCKED_EMAIL_DOMAINS" envSeparator:"," envDefault:""`
}

// Sanitize applies guardrails to intake configuration values.
func (c *IntakeConfig) Sanitize() {
	c.DefaultSource = strings.TrimSpace(c.DefaultSource)
	if c.DefaultSource == "" {
		c.DefaultSource = "site-vitrine"
	}

	domains := c.BlockedEmailDomains[:0]
	for _, d := range c.BlockedEmailDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	c.BlockedEmailDomains = domains
}
