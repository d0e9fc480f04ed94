package handler

import (
	"course-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserTransactionHandler shows purchasers their own ledger rows.
type UserTransactionHandler struct {
	ledger service.LedgerService
}

func NewUserTransactionHandler(ledger service.LedgerService) *UserTransactionHandler {
	return &UserTransactionHandler{ledger: ledger}
}

// GET /api/v1/user/transactions
func (h *UserTransactionHandler) Index(c *fiber.Ctx) error {
	rows, err := h.ledger.History(getUserEmail(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

// GET /api/v1/user/transactions/:id
func (h *UserTransactionHandler) Show(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	row, err := h.ledger.HistoryItem(id, getUserEmail(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": row})
}
