package handler

import (
	"errors"

	"course-commerce/internal/service"
	"course-commerce/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// writeAuthError maps account errors; anything else goes through writeError.
func writeAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, service.ErrSessionTimeout),
		errors.Is(err, jwt.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}
	return writeError(c, err)
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	session, err := h.authService.Login(&req)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(session)
}

// Register creates a student account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	session, err := h.authService.Register(&req)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// ResetPassword handles password change
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req service.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Heartbeat keeps the session alive
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id, err := uuid.Parse(getUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.authService.Heartbeat(id); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req validateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token is required"})
	}

	account, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(fiber.Map{"user": account})
}
