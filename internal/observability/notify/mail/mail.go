package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atelierweb/atelier-api/internal/observability/notify"
)

// Config describes the transactional mail HTTP API used to acknowledge
// submissions. The payload shape follows the common sender/to/subject
// contract of transactional providers.
type Config struct {
	APIURL     string
	APIKey     string
	FromName   string
	FromEmail  string
	ReplyTo    string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client sends a French acknowledgment mail to the submitter for each
// accepted contact request.
type Client struct {
	apiURL     string
	apiKey     string
	fromName   string
	fromEmail  string
	replyTo    string
	retryLimit int
	client     *http.Client
}

type mailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type mailPayload struct {
	Sender      mailAddress   `json:"sender"`
	To          []mailAddress `json:"to"`
	ReplyTo     *mailAddress  `json:"replyTo,omitempty"`
	Subject     string        `json:"subject"`
	TextContent string        `json:"textContent"`
}

// NewClient builds a transactional mail client.
func NewClient(cfg Config) (*Client, error) {
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		return nil, errors.New("mail api url is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("mail api key is required")
	}
	fromEmail := strings.TrimSpace(cfg.FromEmail)
	if fromEmail == "" {
		return nil, errors.New("mail sender address is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	fromName := strings.TrimSpace(cfg.FromName)
	if fromName == "" {
		fromName = "Atelier Web"
	}

	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		fromName:   fromName,
		fromEmail:  fromEmail,
		replyTo:    strings.TrimSpace(cfg.ReplyTo),
		retryLimit: retries,
		client:     hc,
	}, nil
}

// SendContactEvent mails an acknowledgment to the submitter. Events without
// an email address are skipped silently.
func (c *Client) SendContactEvent(ctx context.Context, event notify.ContactEvent) error {
	to := strings.TrimSpace(event.Email)
	if to == "" {
		return nil
	}

	payload := mailPayload{
		Sender:      mailAddress{Name: c.fromName, Email: c.fromEmail},
		To:          []mailAddress{{Name: strings.TrimSpace(event.Name), Email: to}},
		Subject:     "Nous avons bien reçu votre demande",
		TextContent: buildAcknowledgmentBody(event),
	}
	if c.replyTo != "" {
		payload.ReplyTo = &mailAddress{Email: c.replyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func buildAcknowledgmentBody(event notify.ContactEvent) string {
	name := strings.TrimSpace(event.Name)
	if name == "" {
		name = "Bonjour"
	} else {
		name = "Bonjour " + name
	}

	b := strings.Builder{}
	b.WriteString(name)
	b.WriteString(",\n\n")
	b.WriteString("Merci pour votre message. Nous avons bien reçu votre demande")
	if project := strings.TrimSpace(event.Project); project != "" {
		b.WriteString(" concernant un projet « ")
		b.WriteString(project)
		b.WriteString(" »")
	}
	b.WriteString(" et nous reviendrons vers vous sous 48 heures ouvrées.\n\n")
	b.WriteString("À très bientôt,\nL'équipe Atelier Web\n")
	return b.String()
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	return drainMailSuccess(resp)
}

func drainMailSuccess(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain mail response body: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain mail response body: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("read mail error response: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("read mail error response: %w", readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return fmt.Errorf("mail api %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}
