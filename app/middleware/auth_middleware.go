// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/heraldhq/herald/app/services"
)

// AuthMiddleware guards the API behind the service-role bearer token.
// Callers present either the raw shared secret or a service JWT
// previously exchanged for it.
type AuthMiddleware struct {
	serviceRoleToken string
	tokenService     services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(serviceRoleToken string, tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		serviceRoleToken: serviceRoleToken,
		tokenService:     tokenService,
	}
}

// unauthorized is the single rejection shape for every auth failure, so
// probing the endpoint reveals nothing about which check failed
func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
}

// Authenticate validates the Authorization header on protected endpoints
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c)
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return unauthorized(c)
		}

		// The raw service-role secret is always accepted
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.serviceRoleToken)) == 1 {
			c.Locals("auth_subject", "service-role")
			return c.Next()
		}

		// Otherwise the token must be a valid exchanged service JWT
		if m.tokenService != nil {
			if claims, err := m.tokenService.ValidateServiceToken(token); err == nil {
				c.Locals("auth_subject", claims.Role)
				c.Locals("token_id", claims.TokenID)
				return c.Next()
			}
		}

		return unauthorized(c)
	}
}
