package model

import (
	"strings"
	"time"
)

// ErrorSeverity ranks operational error log entries.
type ErrorSeverity string

const (
	// ErrorSeverityLow covers absorbed failures (a notification that did not
	// go out while the contact record survived).
	ErrorSeverityLow ErrorSeverity = "low"
	// ErrorSeverityMedium covers lost customer intent (a submission that
	// passed validation but could not be persisted).
	ErrorSeverityMedium ErrorSeverity = "medium"
	// ErrorSeverityHigh covers failures that need immediate operator action.
	ErrorSeverityHigh ErrorSeverity = "high"
)

// Valid reports whether the severity is supported.
func (s ErrorSeverity) Valid() bool {
	switch s {
	case ErrorSeverityLow, ErrorSeverityMedium, ErrorSeverityHigh:
		return true
	default:
		return false
	}
}

// ParseErrorSeverity normalizes a severity string, defaulting to low.
func ParseErrorSeverity(value string) ErrorSeverity {
	sev := ErrorSeverity(strings.ToLower(strings.TrimSpace(value)))
	if sev.Valid() {
		return sev
	}
	return ErrorSeverityLow
}

// CreateErrorEntryRequest carries a new operational error into the log.
type CreateErrorEntryRequest struct {
	Code      string
	Message   string
	Severity  ErrorSeverity
	Details   map[string]string
	UserAgent *string
	IPAddress *string
	Referrer  *string
}

// ErrorEntry is one operational error log record. Entries exist for operator
// visibility only and never feed back into request handling.
type ErrorEntry struct {
	ID        string            `json:"id"                   db:"id"`
	Code      string            `json:"code"                 db:"code"`
	Message   string            `json:"message"              db:"message"`
	Severity  ErrorSeverity     `json:"severity"             db:"severity"`
	Details   map[string]string `json:"details,omitempty"    db:"details"`
	UserAgent *string           `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress *string           `json:"ip_address,omitempty" db:"ip_address"`
	Referrer  *string           `json:"referrer,omitempty"   db:"referrer"`
	CreatedAt time.Time         `json:"created_at"           db:"created_at"`
}
