package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the identity.
type contextKey string

const identityKey contextKey = "identity"

// CookieName is the HttpOnly cookie the session token travels in.
const CookieName = "token"

var errNoSession = errors.New("auth: no session")

// RequireAuth rejects requests without a valid session with a 401 envelope
// before the handler runs, so no side effect happens for anonymous callers.
// On success the Identity is stored in the request context.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}` + "\n"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the Identity when a valid session is present but
// never blocks the request.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := extractIdentity(r, tokens); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id. Exported for tests and
// for callers outside the HTTP stack.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller's identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Key() != ""
}

// OwnerKeyFromContext resolves the owner key for the current request.
// Returns ("", false) for anonymous requests.
func OwnerKeyFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", false
	}
	return id.Key(), true
}

// extractIdentity resolves the session from an "Authorization: Bearer"
// header or the session cookie. An explicit header is tried first; a stale
// cookie never hides a valid header, and the reverse holds too.
func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	if tokens == nil {
		return Identity{}, errNoSession
	}

	var candidates []string
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); raw != "" {
			candidates = append(candidates, raw)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		candidates = append(candidates, cookie.Value)
	}
	if len(candidates) == 0 {
		return Identity{}, errNoSession
	}

	var firstErr error
	for _, raw := range candidates {
		id, err := tokens.Validate(raw)
		if err == nil {
			return id, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Identity{}, firstErr
}
