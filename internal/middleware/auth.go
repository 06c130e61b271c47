package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/service"
)

// contextKey is a type for context keys
type contextKey string

// Context keys
const (
	StaffIDKey    contextKey = "staffID"
	StaffRoleKey  contextKey = "staffRole"
	DepartmentKey contextKey = "department"
)

// Auth middleware for authenticating requests
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), StaffIDKey, claims.StaffID)
			ctx = context.WithValue(ctx, StaffRoleKey, claims.Role)
			ctx = context.WithValue(ctx, DepartmentKey, claims.Department)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole middleware for checking staff roles
func RequireRole(roles ...models.StaffRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleValue := r.Context().Value(StaffRoleKey)
			if roleValue == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			role := models.StaffRole(roleValue.(string))

			allowed := false
			for _, allowedRole := range roles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions for extracting values from context
func GetStaffID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(StaffIDKey).(string)
	return id, ok
}

func GetStaffRole(ctx context.Context) (models.StaffRole, bool) {
	role, ok := ctx.Value(StaffRoleKey).(string)
	return models.StaffRole(role), ok
}
