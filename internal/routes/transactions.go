package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
)

// RegisterTransactionRoutes wires read-only history endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *ledger.Handler) {
	group := r.Group("/transactions")

	group.Get("/account/:accountId", h.ListTransactions)
	group.Get("/:transactionId", h.GetTransaction)
}
