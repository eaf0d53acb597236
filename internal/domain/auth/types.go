package auth

// Package auth contains domain-level types for admin authentication and
// sessions. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	// RoleAdmin grants access to the admin area (contacts, dashboard, error log).
	RoleAdmin Role = "admin"
	// RoleGuest is the default for identities whose groups grant nothing.
	RoleGuest Role = "guest"
)

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID      string // stable user identifier (sub or preferred_username)
	DisplayName string
	Email       string
	Groups      []string
	ExpiresAt   time.Time // absolute expiry from IdP token
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// IsAdmin returns true if the session role grants admin access.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
