package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/bowling-bff/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "ticket_claims"

// TicketVerifier validates a verification ticket and returns its claims.
type TicketVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Ticket returns middleware that validates the Bearer verification ticket and injects its claims into context.
func Ticket(verifier TicketVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired ticket")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts ticket claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// WithClaims returns a copy of ctx carrying claims. Production requests get
// claims from Ticket; this exists so handler tests can skip token signing.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
