package middleware

import (
	"cryptex-console/internal/core/domain"
	"cryptex-console/internal/pkg/guard"

	"github.com/gofiber/fiber/v2"
)

// RouteGuard applies the page route table to browser navigations:
// unauthenticated visits to protected pages bounce to the login page
// with the original path preserved, and authenticated visits to the
// login page bounce to the dashboard. API and asset paths pass through
// untouched. Runs after OptionalAuth, which resolves the identity.
func RouteGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, authenticated := c.Locals("user").(*domain.User)

		// The server always knows the session outcome, so the state is
		// never Unknown here.
		decision := guard.Decide(c.Path(), guard.StateOf(true, authenticated))
		if decision.Action == guard.Redirect {
			return c.Redirect(decision.Location, fiber.StatusFound)
		}

		return c.Next()
	}
}
