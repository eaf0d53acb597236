package config

import (
	"strings"
	"time"
)

const defaultObservabilityName = "atelier"

// ObservabilityConfig groups configuration that controls metrics and
// notification fan-out for accepted contact submissions.
type ObservabilityConfig struct {
	Metrics       ObservabilityMetricsConfig
	Notifications ObservabilityNotificationsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Notifications.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to external sinks such as StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityNotificationsConfig controls outbound contact notifications.
// All sinks are best-effort: a delivery failure is logged and never alters
// the outcome already committed to the submitter.
type ObservabilityNotificationsConfig struct {
	Enabled    bool                      `env:"NOTIFICATIONS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration             `env:"NOTIFICATIONS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int                       `env:"NOTIFICATIONS_RETRY_LIMIT" envDefault:"2"`
	Slack      SlackNotificationConfig   `                                                  envPrefix:"NOTIFICATIONS_SLACK_"`
	Mail       MailNotificationConfig    `                                                  envPrefix:"NOTIFICATIONS_MAIL_"`
	Webhook    WebhookNotificationConfig `                                                  envPrefix:"NOTIFICATIONS_WEBHOOK_"`
}

// Sanitize normalises notification configuration values.
func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}

	c.Slack.sanitize()
	c.Mail.sanitize()
	c.Webhook.sanitize()

	if !c.Enabled {
		c.Slack.Enabled = false
		c.Mail.Enabled = false
		c.Webhook.Enabled = false
		return
	}

	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		c.Slack.Enabled = false
	}
	if c.Mail.Enabled && (c.Mail.APIURL == "" || c.Mail.APIKey == "") {
		c.Mail.Enabled = false
	}
	if c.Webhook.Enabled && c.Webhook.URL == "" {
		c.Webhook.Enabled = false
	}
}

// SlackNotificationConfig controls the operator alert posted for each
// accepted submission.
type SlackNotificationConfig struct {
	Enabled        bool   `env:"ENABLED"          envDefault:"false"`
	WebhookURL     string `env:"WEBHOOK_URL"`
	Channel        string `env:"CHANNEL"`
	Username       string `env:"USERNAME"         envDefault:"atelier"`
	AdminURLPrefix string `env:"ADMIN_URL_PREFIX"`
}

func (c *SlackNotificationConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	c.AdminURLPrefix = strings.TrimSpace(c.AdminURLPrefix)
	if c.Username == "" {
		c.Username = defaultObservabilityName
	}
}

// MailNotificationConfig controls the acknowledgment mail sent to the
// submitter through a transactional mail HTTP API.
type MailNotificationConfig struct {
	Enabled   bool   `env:"ENABLED"    envDefault:"false"`
	APIURL    string `env:"API_URL"`
	APIKey    string `env:"API_KEY"`
	FromName  string `env:"FROM_NAME"  envDefault:"Atelier Web"`
	FromEmail string `env:"FROM_EMAIL" envDefault:"contact@atelierweb.fr"`
	ReplyTo   string `env:"REPLY_TO"`
}

func (c *MailNotificationConfig) sanitize() {
	c.APIURL = strings.TrimSpace(c.APIURL)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.FromEmail = strings.TrimSpace(c.FromEmail)
	c.ReplyTo = strings.TrimSpace(c.ReplyTo)
	if strings.TrimSpace(c.FromName) == "" {
		c.FromName = "Atelier Web"
	}
}

// WebhookNotificationConfig controls the generic JSON webhook sink. Body
// fields are JMESPath expressions evaluated against the contact event, so
// operators can shape the payload for whatever tool receives it.
type WebhookNotificationConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	URL     string `env:"URL"`
	// BodyTemplate maps output field names to JMESPath expressions,
	// e.g. "lead_email=email,lead_name=name".
	BodyTemplate string            `env:"BODY_TEMPLATE" envDefault:"name=name,email=email,project=project"`
	Headers      map[string]string `env:"HEADERS"`
}

func (c *WebhookNotificationConfig) sanitize() {
	c.URL = strings.TrimSpace(c.URL)
	c.BodyTemplate = strings.TrimSpace(c.BodyTemplate)
}
