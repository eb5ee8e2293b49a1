package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/http/respond"
)

type ctxKey int

const identityKey ctxKey = iota

// Verifier validates a bearer token and returns the caller's identity.
type Verifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified identity on the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respond.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			identity, err := v.Verify(token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// RequireRoles allows the request through only when the authenticated
// caller holds one of the given roles. It must run after Authenticate.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respond.Error(w, http.StatusForbidden, "insufficient role")
		})
	}
}

func withIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the authenticated caller stored by Authenticate.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}
