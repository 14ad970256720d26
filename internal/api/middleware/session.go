package middleware

import (
	"net/http"
	"strings"

	"github.com/coldreach/prospector/internal/api/response"
)

// Session extracts the opaque bearer session token issued by the external
// auth layer and sets it in the request context. The token is never
// validated here; it scopes orchestrators and history, and is forwarded
// verbatim to the scraping engine and lead service.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(setSession(r.Context(), token)))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
