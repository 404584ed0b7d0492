package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/auth"
)

// RegisterAuthRoutes wires public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/login", rateLimiter, h.Login)
}

// RegisterSessionRoutes wires endpoints that require an authenticated user.
func RegisterSessionRoutes(r fiber.Router, h *auth.Handler) {
	r.Get("/auth/me", h.Me)
	r.Put("/auth/change-password", h.ChangePassword)
}
