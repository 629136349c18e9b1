package middleware

import (
	"context"
	"net/http"

	"github.com/perola/clusterd/internal/api/response"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the caller resolved from request headers.
type Identity struct {
	Email        string
	IsController bool
}

// Identify resolves the caller from the X-User-Email header and tags
// controller identities from the allowlist. Requests without an identity are
// rejected. Browser WebSocket clients cannot set headers, so the user query
// parameter is accepted as a fallback.
func Identify(isSystemUser func(string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get("X-User-Email")
			if email == "" {
				email = r.URL.Query().Get("user")
			}
			if email == "" {
				response.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing X-User-Email header")
				return
			}

			identity := &Identity{Email: email, IsController: isSystemUser(email)}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// IdentityFrom returns the identity stored by Identify, or nil.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// WithIdentity returns a copy of ctx carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RequireController rejects callers that are not on the controller
// allowlist.
func RequireController(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		if id == nil || !id.IsController {
			response.WriteError(w, http.StatusForbidden, "forbidden", "controller identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
