package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/auth"
	"github.com/atlas-bank/atlas_bank/internal/identity"
)

// JWTAuth validates bearer tokens and stores the authenticated user id in
// request locals for downstream ownership checks.
func JWTAuth(tokens *auth.Service, users identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		if _, err := users.FindByID(c.UserContext(), userID); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user no longer exists")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
