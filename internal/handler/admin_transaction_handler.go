package handler

import (
	"course-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminTransactionHandler struct {
	ledger service.LedgerService
}

func NewAdminTransactionHandler(ledger service.LedgerService) *AdminTransactionHandler {
	return &AdminTransactionHandler{ledger: ledger}
}

// Index lists ledger rows
// GET /api/v1/admin/transactions?limit=&page=&status=&search=
func (h *AdminTransactionHandler) Index(c *fiber.Ctx) error {
	var req service.ListTransactionsRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid query"})
	}

	page, err := h.ledger.List(&req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// POST /api/v1/admin/transactions
func (h *AdminTransactionHandler) Store(c *fiber.Ctx) error {
	var req service.ManualTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	row, err := h.ledger.CreateManual(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction created", "data": row})
}

// GET /api/v1/admin/transactions/:id
func (h *AdminTransactionHandler) Show(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	row, err := h.ledger.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": row})
}

// PUT /api/v1/admin/transactions/:id
func (h *AdminTransactionHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req service.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	row, err := h.ledger.Update(c.UserContext(), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": row})
}

// DELETE /api/v1/admin/transactions/:id
func (h *AdminTransactionHandler) Destroy(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.ledger.Delete(id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
