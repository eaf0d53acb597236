package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/atelierweb/atelier-api/internal/core"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

const defaultReportTimeout = 3 * time.Second

// ErrorReporterOptions groups dependencies for ErrorReporter.
type ErrorReporterOptions struct {
	Repo    core.ErrorLogRepository
	Logger  *slog.Logger
	Timeout time.Duration
}

// ErrorReporter records operational failures to the persistent error log.
// Recording is strictly best-effort: a reporter that cannot write logs the
// loss and moves on, so a broken error log can never break request handling.
type ErrorReporter struct {
	repo    core.ErrorLogRepository
	logger  *slog.Logger
	timeout time.Duration
}

// NewErrorReporter constructs an ErrorReporter.
func NewErrorReporter(opts ErrorReporterOptions) *ErrorReporter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultReportTimeout
	}
	return &ErrorReporter{
		repo:    opts.Repo,
		logger:  logger.With("component", "error_reporter"),
		timeout: timeout,
	}
}

// Report writes one entry to the error log. The write survives cancellation
// of the caller's context: entries describe failures of requests that are
// already over, so the request ending must not discard them.
func (r *ErrorReporter) Report(ctx context.Context, req *model.CreateErrorEntryRequest) {
	if r == nil || r.repo == nil || req == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if _, err := r.repo.Create(ctx, req); err != nil {
		r.logger.ErrorContext(ctx, "error log write failed",
			"code", req.Code,
			"severity", string(req.Severity),
			"error", err,
		)
	}
}

// List returns a page of error log entries, newest first.
func (r *ErrorReporter) List(
	ctx context.Context,
	limit, offset int,
	severity *model.ErrorSeverity,
) ([]*model.ErrorEntry, error) {
	return r.repo.List(ctx, limit, offset, severity)
}

// Purge removes entries older than the retention window.
func (r *ErrorReporter) Purge(ctx context.Context, days int) (int64, error) {
	return r.repo.PurgeOlderThan(ctx, days)
}
