package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the key under which the authenticated user is
// stored in the Fiber context.
const UserContextKey = "currentUser"

// AuthMiddleware validates the bearer token and resolves it to a
// stored user. Missing header, malformed header, bad token and unknown
// subject all fail with the same response, so a caller cannot tell a
// bad token from a deleted account.
func AuthMiddleware(port UsersPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c)
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return unauthorized(c)
		}

		currentUser, err := port.CurrentUser(c.UserContext(), token)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(UserContextKey, currentUser)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Detail: "Could not validate credentials",
	})
}
