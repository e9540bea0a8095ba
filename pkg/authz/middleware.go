package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campusd/professor-trust/pkg/httputil"
	"github.com/campusd/professor-trust/pkg/types"
	"github.com/campusd/professor-trust/pkg/utils"
	"github.com/campusd/professor-trust/pkg/verifier"
	"github.com/gorilla/mux"
)

// Context key type to avoid string collision in context values
type contextKey string

const claimsContextKey contextKey = "accessClaims"

// Error bodies are deliberately generic: 401 never says which check failed
// and 403 is identical for role and ownership violations, so callers cannot
// probe which resources exist.
const (
	msgMissingToken = "missing bearer token"
	msgInvalidToken = "invalid token"
	msgForbidden    = "forbidden"
)

// ClaimsFrom returns the verified claims stored by RequireRoles.
func ClaimsFrom(ctx context.Context) (*types.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*types.AccessClaims)
	return claims, ok
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// Middleware wires token verification and the gates into mux routes.
type Middleware struct {
	verifier *verifier.Verifier
}

// NewMiddleware creates authorization middleware backed by v.
func NewMiddleware(v *verifier.Verifier) *Middleware {
	return &Middleware{verifier: v}
}

// RequireRoles authenticates the bearer token and applies the role gate. On
// success the verified claims are stored in the request context for
// downstream gates and handlers. A missing or invalid token ends the request
// with 401, a disallowed role with 403; the handler never runs in either
// case.
func (m *Middleware) RequireRoles(allowed ...types.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httputil.WriteUnauthorized(w, msgMissingToken)
				return
			}

			claims, err := m.verifier.Verify(r.Context(), token)
			if err != nil {
				slog.Debug("Token verification failed",
					slog.String("token", utils.RedactToken(token, 8, 4)),
					slog.String("error", err.Error()),
				)
				httputil.WriteUnauthorized(w, msgInvalidToken)
				return
			}

			if decision := Authorize(claims, allowed...); !decision.Allowed {
				slog.Debug("Role not permitted",
					slog.String("subject", decision.SubjectID),
					slog.String("role", string(decision.Role)),
				)
				httputil.WriteForbidden(w, msgForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwnership applies the ownership gate against the named route
// parameter. It must run after RequireRoles. The route parameter is the
// resource owner id (record id and owner id coincide here); no record lookup
// happens before the gate passes.
func (m *Middleware) RequireOwnership(param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				httputil.WriteUnauthorized(w, msgInvalidToken)
				return
			}

			ownerID := mux.Vars(r)[param]
			if decision := Restrict(claims, ownerID); !decision.Allowed {
				slog.Debug("Ownership check failed",
					slog.String("subject", decision.SubjectID),
					slog.String("role", string(decision.Role)),
				)
				httputil.WriteForbidden(w, msgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
