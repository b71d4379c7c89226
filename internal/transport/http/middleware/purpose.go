package middleware

import (
	"net/http"

	"github.com/bowling-bff/internal/domain"
)

// RequirePurpose allows the request through only when the ticket was issued for one of purposes.
// Must run after Ticket.
func RequirePurpose(purposes ...domain.Purpose) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, p := range purposes {
				if claims.Purpose == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "ticket not valid for this action")
		})
	}
}
