package handler

import (
	"errors"

	"course-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler serves the storefront checkout and the gateway callbacks.
type TransactionHandler struct {
	checkout  service.CheckoutService
	reconcile service.ReconcileService
}

func NewTransactionHandler(checkout service.CheckoutService, reconcile service.ReconcileService) *TransactionHandler {
	return &TransactionHandler{checkout: checkout, reconcile: reconcile}
}

// CreatePayment handles checkout
// POST /api/v1/payment_url
func (h *TransactionHandler) CreatePayment(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	res, err := h.checkout.Checkout(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Transactions inserted successfully",
		"data":    res,
	})
}

// Notification is the payment gateway webhook
// POST /api/v1/notification
func (h *TransactionHandler) Notification(c *fiber.Ctx) error {
	var req service.NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	_, err := h.reconcile.HandleNotification(c.UserContext(), &req, c.Body())
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Notification processed successfully"})
	case errors.Is(err, service.ErrUnhandledStatus):
		// Acknowledge so the gateway does not keep retrying.
		return c.JSON(fiber.Map{"message": "Unknown or unhandled transaction status"})
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return writeError(c, err)
}

// CheckStatus polls the gateway and reconciles
// POST /api/v1/transactions/check-status
func (h *TransactionHandler) CheckStatus(c *fiber.Ctx) error {
	var req service.CheckStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	res, err := h.reconcile.CheckStatus(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Transaction status checked successfully",
		"data": fiber.Map{
			"order_id": res.OrderID,
			"status":   res.Status,
			"details":  res.Details,
		},
	})
}

// UpdateStatus lets an operator assert a gateway status
// POST /api/v1/transactions/update-status
func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	var req service.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	res, err := h.reconcile.UpdateStatus(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Transaction status updated successfully",
		"data": fiber.Map{
			"order_id":     res.OrderID,
			"order_status": res.Status,
		},
	})
}
