package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atelierweb/atelier-api/internal/core"
	"github.com/atelierweb/atelier-api/internal/domain/intake"
	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/observability/metrics"
	"github.com/atelierweb/atelier-api/internal/observability/notify"
	"github.com/atelierweb/atelier-api/internal/observability/statsd"
	"github.com/atelierweb/atelier-api/internal/ratelimit"
)

// ConfirmationMessage is the French acknowledgment returned for every
// accepted submission. Spam hits return the same message so automation cannot
// tell a discarded submission from a stored one.
const ConfirmationMessage = "Merci pour votre message ! Nous reviendrons vers vous sous 48 heures ouvrées."

const defaultNotifyTimeout = 10 * time.Second

// Submission is one raw contact-form submission entering the pipeline.
// Field values arrive as submitted; normalization happens inside Submit.
type Submission struct {
	Name        string
	Email       string
	Phone       string
	CompanyName string
	Project     string
	Budget      string
	Timeline    string
	Message     string

	// Decoys carries the honeypot field values keyed by field name.
	Decoys map[string]string

	// ClientKey identifies the submitter for rate limiting.
	ClientKey string

	Source    string
	IPAddress string
	UserAgent string
	Referrer  string
}

// SubmitResult is the caller-facing outcome of an accepted submission.
// Contact is nil when the submission was silently discarded as spam.
type SubmitResult struct {
	Contact *model.Contact
	Message string
}

// RateLimitedError signals that the submitter exceeded the admission ceiling.
// The decision carries the header values the transport layer reports back.
type RateLimitedError struct {
	Decision ratelimit.Decision
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d per window", e.Decision.Limit)
}

// ValidationError carries every failing field with its joined messages.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Details))
}

// IntakeServiceOptions groups dependencies for IntakeService.
type IntakeServiceOptions struct {
	Contacts core.ContactRepository
	Limiter  *ratelimit.Limiter
	Rule     ratelimit.Rule
	Reporter *ErrorReporter
	Sinks    []notify.NamedSink
	Metrics  statsd.Sink
	Logger   *slog.Logger

	// DefaultSource is recorded when a submission carries no source.
	DefaultSource string

	// BlockedEmailDomains are registrable domains treated as spam.
	BlockedEmailDomains []string

	// NotifyTimeout bounds the whole notification fan-out for one submission.
	NotifyTimeout time.Duration
}

// IntakeService runs the contact admission pipeline: rate check, honeypot,
// normalization, category mapping, validation, persistence, then best-effort
// notifications. Only persistence can fail a submission that passed
// validation; notification failures are absorbed, logged, and recorded to
// the error log.
type IntakeService struct {
	contacts       core.ContactRepository
	limiter        *ratelimit.Limiter
	rule           ratelimit.Rule
	reporter       *ErrorReporter
	sinks          []notify.NamedSink
	metrics        statsd.Sink
	logger         *slog.Logger
	schema         *intake.Schema
	defaultSource  string
	blockedDomains []string
	notifyTimeout  time.Duration

	notifyWG sync.WaitGroup
}

// NewIntakeService constructs an IntakeService.
func NewIntakeService(opts IntakeServiceOptions) *IntakeService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaultSource := strings.TrimSpace(opts.DefaultSource)
	if defaultSource == "" {
		defaultSource = "site-vitrine"
	}
	notifyTimeout := opts.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}

	var sinks []notify.NamedSink
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, notify.NamedSink{Name: name, Sink: entry.Sink})
	}

	return &IntakeService{
		contacts:       opts.Contacts,
		limiter:        opts.Limiter,
		rule:           opts.Rule,
		reporter:       opts.Reporter,
		sinks:          sinks,
		metrics:        opts.Metrics,
		logger:         logger.With("component", "intake"),
		schema:         intake.ContactSchema(),
		defaultSource:  defaultSource,
		blockedDomains: opts.BlockedEmailDomains,
		notifyTimeout:  notifyTimeout,
	}
}

// Submit runs one submission through the pipeline. A nil error means the
// submitter sees success; the contact in the result is nil when the
// submission was discarded as spam.
func (s *IntakeService) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	started := time.Now()

	if s.limiter != nil {
		decision := s.limiter.Admit(ctx, sub.ClientKey, s.rule)
		if !decision.Admitted {
			s.emitOutcome(sub, metrics.ResultRateLimited, time.Since(started), nil)
			return nil, &RateLimitedError{Decision: decision}
		}
	}

	if intake.HoneypotTripped(sub.Decoys) {
		s.logger.InfoContext(ctx, "submission discarded: honeypot",
			"ip", sub.IPAddress,
		)
		s.emitOutcome(sub, metrics.ResultSpam, time.Since(started), nil)
		return &SubmitResult{Message: ConfirmationMessage}, nil
	}

	req := s.normalize(sub)

	if intake.EmailDomainBlocked(req.Email, s.blockedDomains) {
		s.logger.InfoContext(ctx, "submission discarded: blocked email domain",
			"ip", sub.IPAddress,
		)
		s.emitOutcome(sub, metrics.ResultSpam, time.Since(started), nil)
		return &SubmitResult{Message: ConfirmationMessage}, nil
	}

	if verr := s.validate(req, sub); verr != nil {
		s.emitOutcome(sub, metrics.ResultRejected, time.Since(started), nil)
		return nil, verr
	}

	contact, err := s.contacts.Create(ctx, req)
	if err != nil {
		s.reporter.Report(ctx, &model.CreateErrorEntryRequest{
			Code:      "persistence",
			Message:   fmt.Sprintf("contact insert failed: %v", err),
			Severity:  model.ErrorSeverityMedium,
			UserAgent: optionalString(sub.UserAgent),
			IPAddress: optionalString(sub.IPAddress),
			Referrer:  optionalString(sub.Referrer),
		})
		s.emitOutcome(sub, metrics.ResultError, time.Since(started), err)
		return nil, fmt.Errorf("persist contact: %w", err)
	}

	s.logger.InfoContext(ctx, "contact accepted",
		"contact_id", contact.ID,
		"project", string(contact.Project),
		"source", contact.Source,
	)
	s.emitOutcome(sub, metrics.ResultAccepted, time.Since(started), nil)

	s.launchNotifications(contactEvent(contact))

	return &SubmitResult{Contact: contact, Message: ConfirmationMessage}, nil
}

// Wait blocks until in-flight notification fan-outs finish. Called on
// shutdown and by tests; the request path never does.
func (s *IntakeService) Wait() {
	s.notifyWG.Wait()
}

func (s *IntakeService) normalize(sub Submission) *model.CreateContactRequest {
	req := &model.CreateContactRequest{
		Name:      intake.SanitizeText(sub.Name),
		Email:     intake.SanitizeEmail(sub.Email),
		Budget:    intake.SanitizeText(sub.Budget),
		Message:   intake.SanitizeText(sub.Message),
		Source:    strings.TrimSpace(sub.Source),
		IPAddress: strings.TrimSpace(sub.IPAddress),
		UserAgent: optionalString(sub.UserAgent),
		Referrer:  optionalString(sub.Referrer),
	}
	if req.Source == "" {
		req.Source = s.defaultSource
	}
	if phone := intake.SanitizePhone(sub.Phone); phone != "" {
		req.Phone = &phone
	}
	if company := intake.SanitizeText(sub.CompanyName); company != "" {
		req.CompanyName = &company
	}
	if timeline := intake.SanitizeText(sub.Timeline); timeline != "" {
		req.Timeline = &timeline
	}
	if project := strings.TrimSpace(sub.Project); project != "" {
		req.Project = model.MapProjectCategory(project)
	}
	req.BudgetAmount = model.ParseBudget(req.Budget)
	return req
}

// validate runs the schema against normalized values. Every rule runs and
// every failing message is surfaced per field.
func (s *IntakeService) validate(req *model.CreateContactRequest, sub Submission) error {
	data := map[string]string{
		intake.FieldName:    req.Name,
		intake.FieldEmail:   req.Email,
		intake.FieldProject: string(req.Project),
		intake.FieldBudget:  req.Budget,
		intake.FieldMessage: req.Message,
	}
	if req.Phone != nil {
		data[intake.FieldPhone] = *req.Phone
	}

	result := s.schema.Validate(data)
	if result.Valid {
		return nil
	}
	return &ValidationError{Details: result.FieldMessages()}
}

// launchNotifications fans the event out to every sink on a background
// context. The caller-facing path never waits on delivery; a sink failure is
// logged and recorded to the error log, nothing more.
func (s *IntakeService) launchNotifications(event notify.ContactEvent) {
	if len(s.sinks) == 0 {
		return
	}

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for _, entry := range s.sinks {
			g.Go(func() error {
				err := entry.Sink.SendContactEvent(gctx, event)
				metrics.EmitNotification(s.metrics, entry.Name, err)
				if err != nil {
					s.logger.ErrorContext(gctx, "notification delivery failed",
						"sink", entry.Name,
						"contact_id", event.ContactID,
						"error", err,
					)
					s.reporter.Report(gctx, &model.CreateErrorEntryRequest{
						Code:     "notification",
						Message:  fmt.Sprintf("sink %s delivery failed: %v", entry.Name, err),
						Severity: model.ErrorSeverityLow,
						Details:  map[string]string{"contact_id": event.ContactID, "sink": entry.Name},
					})
				}
				// Delivery failures never propagate; each sink gets its try.
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (s *IntakeService) emitOutcome(sub Submission, result string, elapsed time.Duration, err error) {
	metrics.EmitIntakeOutcome(s.metrics, metrics.IntakeMetric{
		Source:   strings.TrimSpace(sub.Source),
		Project:  strings.TrimSpace(sub.Project),
		Result:   result,
		Duration: elapsed,
		Err:      err,
	})
}

func contactEvent(contact *model.Contact) notify.ContactEvent {
	event := notify.ContactEvent{
		ContactID:    contact.ID,
		Name:         contact.Name,
		Email:        contact.Email,
		Project:      string(contact.Project),
		Budget:       contact.Budget,
		BudgetAmount: contact.BudgetAmount,
		Message:      contact.Message,
		Source:       contact.Source,
		ReceivedAt:   contact.CreatedAt,
	}
	if contact.Phone != nil {
		event.Phone = *contact.Phone
	}
	return event
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
