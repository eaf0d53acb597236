package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/atelierweb/atelier-api/internal/ratelimit"
)

// ClientIdentity groups the settings for deriving a submitter identity
// from a request.
type ClientIdentity struct {
	// TrustProxyHeaders enables X-Forwarded-For / X-Real-IP. Only safe behind
	// a reverse proxy that strips inbound copies of these headers.
	TrustProxyHeaders bool

	// UserAgentPrefixLen bounds how much of the agent string ends up in the
	// rate-limit key.
	UserAgentPrefixLen int
}

// IP returns the submitter's network address as recorded with the contact.
// The first forwarded-for hop wins when proxy headers are trusted.
func (c ClientIdentity) IP(r *http.Request) string {
	if c.TrustProxyHeaders {
		if ff := r.Header.Get("X-Forwarded-For"); ff != "" {
			if idx := strings.IndexByte(ff, ','); idx != -1 {
				ff = ff[:idx]
			}
			return strings.TrimSpace(ff)
		}
		if rip := r.Header.Get("X-Real-IP"); rip != "" {
			return strings.TrimSpace(rip)
		}
	}
	return remoteHost(r)
}

// Key returns the rate-limit key for the request.
func (c ClientIdentity) Key(r *http.Request) string {
	forwardedFor, realIP := "", ""
	if c.TrustProxyHeaders {
		forwardedFor = r.Header.Get("X-Forwarded-For")
		realIP = r.Header.Get("X-Real-IP")
	}
	return ratelimit.ClientKey(forwardedFor, realIP, remoteHost(r), r.UserAgent(), c.UserAgentPrefixLen)
}

// remoteHost strips the port from the transport address.
func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// - defLimit: default limit when not specified
// - maxLimit: maximum allowed limit (values > maxLimit are clamped to maxLimit).
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	// Defensive: ensure maxLimit is at least 1 to avoid clamping to 0 or negatives
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	if lim < 1 {
		lim = 1
	}
	if lim > maxLimit {
		lim = maxLimit
	}
	if off < 0 {
		off = 0
	}
	return lim, off
}
