package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"vismay-core/internal/auth"
	"vismay-core/internal/model"
)

type tokenValidator interface {
	Validate(ctx context.Context, tokenString string, expectedKind string) (*auth.Claims, error)
}

type authorizer interface {
	Authorize(ctx context.Context, roleName string, required string) (bool, error)
}

type deniedRecorder interface {
	Record(ctx context.Context, e model.AuditEntry)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthMiddleware is the single enforcement point for authentication and
// authorization. Route handlers never run their own permission checks; the
// router declares a required permission per endpoint and RequirePermission
// enforces it.
type AuthMiddleware struct {
	validator tokenValidator
	resolver  authorizer
	audit     deniedRecorder
}

func NewAuthMiddleware(validator tokenValidator, resolver authorizer, audit deniedRecorder) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, resolver: resolver, audit: audit}
}

// RequireAuth moves a request from unauthenticated to validated: bearer
// extraction, access-token validation, claims attached to the context. Every
// failure collapses to the same 401 body; the internal reason is only logged.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeDenied(w, http.StatusUnauthorized, "authentication required")
			return
		}

		token := strings.TrimSpace(header[7:])
		claims, err := m.validator.Validate(r.Context(), token, auth.KindAccess)
		if err != nil {
			slog.Debug("token rejected", "path", r.URL.Path, "reason", err)
			writeDenied(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission authorizes the validated identity against one required
// permission code. Runs after RequireAuth.
func (m *AuthMiddleware) RequirePermission(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusUnauthorized, "authentication required")
				return
			}

			allowed, err := m.resolver.Authorize(r.Context(), claims.Role, required)
			if err != nil {
				slog.Error("permission resolution failed", "role", claims.Role, "permission", required, "error", err)
				writeDenied(w, http.StatusForbidden, "access denied")
				return
			}

			if !allowed {
				if m.audit != nil {
					m.audit.Record(r.Context(), model.AuditEntry{
						Action:   "access.denied",
						ActorID:  claims.UserID(),
						Resource: r.Method + " " + r.URL.Path,
						Status:   "denied",
						Detail:   required,
						ClientIP: r.RemoteAddr,
					})
				}
				writeDenied(w, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*auth.Claims)
	return claims, ok
}

// ContextWithClaims is exported for handler tests.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func writeDenied(w http.ResponseWriter, status int, message string) {
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
