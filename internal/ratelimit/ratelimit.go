// Package ratelimit implements fixed-window request admission.
//
// Counters reset at fixed boundaries rather than sliding continuously, so a
// burst straddling a window edge can reach twice the ceiling. That tradeoff
// is accepted: the limiter throttles form spam, it does not enforce fairness.
package ratelimit

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Rule is one admission ceiling: at most MaxRequests per Window.
type Rule struct {
	Window      time.Duration
	MaxRequests int
}

// Decision is the outcome of one admission check.
type Decision struct {
	Admitted  bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per key within fixed windows. Incr must perform the
// increment-and-read atomically: two concurrent calls for one key must never
// observe the same count.
type Store interface {
	// Incr increments the counter for key, starting a fresh window of the
	// given length when none is active, and returns the post-increment count
	// with the active window's reset time.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Limiter makes admission decisions against a shared counter store.
type Limiter struct {
	store  Store
	logger *slog.Logger
}

// NewLimiter constructs a Limiter. A nil logger falls back to slog.Default.
func NewLimiter(store Store, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{store: store, logger: logger.With("component", "ratelimit")}
}

// Admit records one request for key and decides whether it is within the
// rule's ceiling. Rejected requests still count, so window statistics reflect
// total attempts. Admit never fails: a store error admits the request
// (fail-open) rather than turning an infrastructure problem into a 429.
func (l *Limiter) Admit(ctx context.Context, key string, rule Rule) Decision {
	count, resetAt, err := l.store.Incr(ctx, key, rule.Window)
	if err != nil {
		l.logger.ErrorContext(ctx, "rate limit store error, admitting",
			"error", err,
		)
		return Decision{
			Admitted:  true,
			Limit:     rule.MaxRequests,
			Remaining: rule.MaxRequests,
			ResetAt:   time.Now().Add(rule.Window),
		}
	}

	remaining := rule.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Admitted:  count <= int64(rule.MaxRequests),
		Limit:     rule.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// ClientKey derives the limiter key for one client: the first forwarded-for
// hop (or the real-IP header, or the transport address) plus a bounded prefix
// of the declared agent string. The agent suffix separates unrelated clients
// sharing a NAT address while keeping keys memory-bounded.
func ClientKey(forwardedFor, realIP, remoteAddr, userAgent string, uaPrefixLen int) string {
	ip := remoteAddr
	switch {
	case forwardedFor != "":
		ip = forwardedFor
		if idx := strings.IndexByte(ip, ','); idx != -1 {
			ip = ip[:idx]
		}
	case realIP != "":
		ip = realIP
	}
	ip = strings.TrimSpace(ip)

	ua := userAgent
	if uaPrefixLen > 0 && len(ua) > uaPrefixLen {
		ua = ua[:uaPrefixLen]
	}

	return ip + "|" + ua
}
