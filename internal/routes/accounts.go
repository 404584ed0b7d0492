package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
)

// RegisterAccountRoutes wires account lifecycle and money movement
// endpoints. The router is expected to already carry authentication.
func RegisterAccountRoutes(r fiber.Router, h *ledger.Handler) {
	group := r.Group("/accounts")

	group.Post("/", h.CreateAccount)
	group.Get("/user/:userId", h.ListAccounts)
	group.Get("/:accountId", h.GetAccount)
	group.Delete("/:accountId", h.DeleteAccount)

	group.Post("/:accountId/deposit", h.Deposit)
	group.Post("/:accountId/withdraw", h.Withdraw)
	group.Post("/:accountId/transfer", h.Transfer)
}
