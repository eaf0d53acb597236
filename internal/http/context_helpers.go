package httpx

import (
	"context"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
)

// sessionKey is unexported so no other package can collide with or spoof the
// session entry in a request context.
type sessionKey struct{}

// SetSessionInContext attaches an authenticated session to the context. A nil
// session leaves the context untouched.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the session placed by the auth middleware,
// reporting whether one is present.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}
