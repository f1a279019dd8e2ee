package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"product-catalog/internal/apierror"
	"product-catalog/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const AdminRoleKey contextKey = "admin_role"

// RequireAdmin validates the Bearer token on admin endpoints. Each failure
// mode maps to its own error code: a missing or malformed token is
// admin_auth_required, an expired one is token_expired, and a valid token
// without the admin role is forbidden_admin_role.
func RequireAdmin(auth service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierror.Write(w, apierror.CodeAdminAuthRequired, "admin authorization required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				apierror.Write(w, apierror.CodeAdminAuthRequired, "invalid authorization header format")
				return
			}

			claims, err := auth.ValidateAdminToken(parts[1])
			if err != nil {
				logger.Debug("Admin token validation failed", zap.Error(err))
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					apierror.Write(w, apierror.CodeTokenExpired, "token has expired")
				case errors.Is(err, service.ErrNotAdmin):
					apierror.Write(w, apierror.CodeForbiddenAdminRole, "admin role required")
				default:
					apierror.Write(w, apierror.CodeAdminAuthRequired, "invalid admin token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), AdminRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminRole extracts the authenticated admin role from request context.
func GetAdminRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(AdminRoleKey).(string)
	return role, ok
}
