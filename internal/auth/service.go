// internal/auth/service.go
// Access token validation. Signup/login and token issuance belong to the
// platform's auth service; this backend only needs to resolve the current
// authenticated identity from a bearer token.

package auth

import (
    "context"

    "github.com/heartlinkapp/heartlink-backend/internal/common/utils"
)

// Service resolves the current authenticated identity
type Service interface {
    ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

type service struct {
    jwtSecret string
}

func NewService(jwtSecret string) Service {
    return &service{jwtSecret: jwtSecret}
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
    return utils.ValidateJWT(token, s.jwtSecret)
}
