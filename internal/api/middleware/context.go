package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const sessionKey contextKey = "session"

func setSession(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionKey, token)
}

// GetSession returns the session token extracted by the Session middleware.
func GetSession(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(sessionKey).(string)
	return token, ok
}

// WithSession injects a session token into a request context (for testing).
func WithSession(r *http.Request, token string) *http.Request {
	return r.WithContext(setSession(r.Context(), token))
}
