package handler

import (
	"course-commerce/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// AccessHandler lists the roles and privileges the admin UI can show.
type AccessHandler struct {
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
}

func NewAccessHandler(roleRepo repository.RoleRepository, privilegeRepo repository.PrivilegeRepository) *AccessHandler {
	return &AccessHandler{roleRepo: roleRepo, privilegeRepo: privilegeRepo}
}

// GetRoles returns all roles with their privileges
// GET /api/v1/roles
func (h *AccessHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}
	return c.JSON(roles)
}

// GET /api/v1/privileges
func (h *AccessHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.privilegeRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
	}
	return c.JSON(privileges)
}
