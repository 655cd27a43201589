// internal/auth/middleware.go

package auth

import (
    "context"
    "net/http"
    "strings"

    "github.com/heartlinkapp/heartlink-backend/internal/common/utils"
)

// Middleware provides authentication middleware
type Middleware struct {
    service Service
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(service Service) *Middleware {
    return &Middleware{
        service: service,
    }
}

// Authenticate is the main middleware function that protects routes
// It verifies the JWT token and adds user information to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        // 1. Extract token from Authorization header
        token := m.extractToken(r)
        if token == "" {
            utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
            return
        }

        // 2. Validate token
        claims, err := m.service.ValidateToken(r.Context(), token)
        if err != nil {
            utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
            return
        }

        // 3. Check if it's an access token (not refresh)
        if claims.Type != "access" {
            utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
            return
        }

        // 4. Add user information to request context
        ctx := context.WithValue(r.Context(), "userID", claims.UserID)
        ctx = context.WithValue(ctx, "username", claims.Username)

        // 5. Pass to the next handler with the updated context
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func (m *Middleware) extractToken(r *http.Request) string {
    authHeader := r.Header.Get("Authorization")
    if authHeader == "" {
        return ""
    }

    parts := strings.Split(authHeader, " ")
    if len(parts) != 2 || parts[0] != "Bearer" {
        return ""
    }

    return parts[1]
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
    userID, ok := ctx.Value("userID").(int64)
    return userID, ok
}

// GetUsernameFromContext extracts username from request context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
    username, ok := ctx.Value("username").(string)
    return username, ok
}
