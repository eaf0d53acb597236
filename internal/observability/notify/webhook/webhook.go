package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/atelierweb/atelier-api/internal/observability/notify"
)

// Evaluator abstracts JMESPath operations for testability.
type Evaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements Evaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// Config describes a generic JSON webhook destination. BodyTemplate maps
// output field names to JMESPath expressions evaluated against the contact
// event, e.g. "lead_name=name,lead_email=email".
type Config struct {
	URL          string
	BodyTemplate string
	Headers      map[string]string
	Timeout      time.Duration
	RetryLimit   int
	Client       *http.Client
	Evaluator    Evaluator
}

type bodyField struct {
	name string
	expr string
}

// Client posts a shaped JSON document to an operator-configured webhook for
// each accepted submission.
type Client struct {
	url        string
	fields     []bodyField
	headers    map[string]string
	retryLimit int
	client     *http.Client
	evaluator  Evaluator
}

// NewClient builds a webhook client, validating the URL and every JMESPath
// expression in the body template up front.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("webhook url is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid webhook url scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("invalid webhook url: missing host")
	}

	evaluator := cfg.Evaluator
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}

	fields, err := parseBodyTemplate(cfg.BodyTemplate, evaluator)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.New("webhook body template is required")
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

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		if k = strings.TrimSpace(k); k == "" {
			continue
		}
		headers[k] = v
	}

	return &Client{
		url:        endpoint,
		fields:     fields,
		headers:    headers,
		retryLimit: retries,
		client:     hc,
		evaluator:  evaluator,
	}, nil
}

// parseBodyTemplate splits "name=expr,name=expr" pairs and validates each
// expression. Field order in the template is preserved in errors only; the
// JSON body is an object so output order is not significant.
func parseBodyTemplate(template string, evaluator Evaluator) ([]bodyField, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, nil
	}

	pairs := strings.Split(template, ",")
	fields := make([]bodyField, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, expr, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		expr = strings.TrimSpace(expr)
		if !ok || name == "" || expr == "" {
			return nil, fmt.Errorf("invalid body template pair %q", pair)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate body template field %q", name)
		}
		if err := evaluator.Validate(expr); err != nil {
			return nil, fmt.Errorf("invalid expression for field %q: %w", name, err)
		}
		seen[name] = struct{}{}
		fields = append(fields, bodyField{name: name, expr: expr})
	}
	return fields, nil
}

// SendContactEvent evaluates the body template against the event and posts
// the resulting JSON document.
func (c *Client) SendContactEvent(ctx context.Context, event notify.ContactEvent) error {
	data := eventDocument(event)

	doc := make(map[string]any, len(c.fields))
	for _, field := range c.fields {
		value, err := c.evaluator.Evaluate(field.expr, data)
		if err != nil {
			return fmt.Errorf("evaluate field %q: %w", field.name, err)
		}
		doc[field.name] = value
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
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

// eventDocument flattens the event into the document JMESPath expressions
// are evaluated against. Keys are stable and documented in the operator
// configuration reference.
func eventDocument(event notify.ContactEvent) map[string]any {
	doc := map[string]any{
		"contact_id": event.ContactID,
		"name":       event.Name,
		"email":      event.Email,
		"phone":      event.Phone,
		"project":    event.Project,
		"budget":     event.Budget,
		"message":    event.Message,
		"source":     event.Source,
	}
	if event.BudgetAmount != nil {
		doc["budget_amount"] = float64(*event.BudgetAmount)
	}
	if !event.ReceivedAt.IsZero() {
		doc["received_at"] = event.ReceivedAt.UTC().Format(time.RFC3339)
	}
	if len(event.Metadata) > 0 {
		meta := make(map[string]any, len(event.Metadata))
		for k, v := range event.Metadata {
			meta[k] = v
		}
		doc["metadata"] = meta
	}
	return doc
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	return drainSuccess(resp)
}

func drainSuccess(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain webhook response body: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain webhook response body: %w", err)
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
				fmt.Errorf("read webhook error response: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("read webhook error response: %w", readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return fmt.Errorf("webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}
