package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequireAnyRole admits callers whose session role is one of roles. It must
// run after AuthnMiddleware.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFrom(r.Context())
			if !ok || !slices.Contains(roles, c.Role) {
				w.Header().Set("WWW-Authenticate",
					`Bearer error="insufficient_role", role="`+strings.Join(roles, " ")+`"`)
				WriteError(w, http.StatusForbidden, "insufficient_role", "caller role may not use this endpoint")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
