package middleware

import (
	"strings"

	"cryptex-console/internal/config"
	"cryptex-console/internal/core/domain"
	"cryptex-console/internal/pkg/rbac"
	"cryptex-console/internal/pkg/response"
	"cryptex-console/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// extractToken pulls the access token from the session cookie first,
// then from the Authorization header. In BFF mode the cookie is the
// only source browsers use; direct-mode clients send the header.
func extractToken(c *fiber.Ctx, cfg *config.Config) string {
	accessToken := c.Cookies(cfg.Cookie.Name)
	if accessToken == "" {
		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	return accessToken
}

// userFromToken builds the request identity from token claims. The
// console does not hold the signing key; the exchange backend verifies
// the signature on every forwarded call, so claims here gate the UI
// only.
func userFromToken(accessToken string) (*domain.User, error) {
	claims, err := token.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Roles:    claims.Roles,
		IsActive: true,
	}, nil
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c, cfg)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		if token.IsExpired(accessToken) {
			return response.Unauthorized(c, "Access token expired")
		}

		user, err := userFromToken(accessToken)
		if err != nil {
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("user", user)
		c.Locals("accessToken", accessToken)

		return c.Next()
	}
}

// RequirePermission creates permission-based authorization middleware
func RequirePermission(perms ...rbac.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*domain.User)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		if !rbac.HasAnyPermission(user, perms...) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// OptionalAuth middleware - doesn't require auth but sets user info if token present
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c, cfg)

		if accessToken != "" && !token.IsExpired(accessToken) {
			if user, err := userFromToken(accessToken); err == nil {
				c.Locals("user", user)
				c.Locals("accessToken", accessToken)
			}
		}

		return c.Next()
	}
}
