package handler

import (
	"errors"
	"log"
	"strconv"

	"course-commerce/internal/gateway"
	"course-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Helpers for the user info set by the auth middleware
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system"
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, ok := c.Locals("user_name").(string)
	if !ok {
		return "Unknown"
	}
	return userName
}

func getUserEmail(c *fiber.Ctx) string {
	userEmail, _ := c.Locals("user_email").(string)
	return userEmail
}

func actorOf(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: getUserID(c), Name: getUserName(c), Email: getUserEmail(c)}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// writeError maps service errors onto status codes. Capacity errors use
// "message" so storefront clients can show them as is.
func writeError(c *fiber.Ctx, err error) error {
	var (
		valErr *service.ValidationError
		capErr *service.CapacityExceededError
	)
	switch {
	case errors.As(err, &valErr):
		if len(valErr.Fields) > 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": valErr.Error(), "fields": valErr.Fields})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": valErr.Error()})
	case errors.As(err, &capErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": capErr.Error()})
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	case errors.Is(err, service.ErrCourseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	case errors.Is(err, service.ErrInvalidSignature):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid signature"})
	case errors.Is(err, service.ErrAmountMismatch):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create transaction: " + err.Error()})
	case errors.Is(err, gateway.ErrGatewayUnavailable), errors.Is(err, gateway.ErrMalformedResponse):
		log.Printf("Payment gateway error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment gateway error"})
	}
	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}
