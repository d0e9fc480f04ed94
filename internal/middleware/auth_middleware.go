package middleware

import (
	"strings"

	"course-commerce/internal/repository"
	"course-commerce/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAuth validates the bearer token against the user's current session
// and exposes the identity to handlers through c.Locals.
func RequireAuth(issuer *jwt.Issuer, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Missing authorization token")
		}
		token, ok := bearerToken(header)
		if !ok {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		claims, err := issuer.Validate(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		// Single session: the token must carry the user's current version.
		user, err := userRepo.FindByID(claims.UserID)
		switch {
		case err != nil:
			return unauthorized(c, "User not found")
		case !user.IsActive:
			return unauthorized(c, "User account is inactive")
		case user.TokenVersion != claims.TokenVersion:
			return unauthorized(c, "Session expired (logged in on another device)")
		}

		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", claims.RoleCode)
		c.Locals("user_privileges", claims.Privileges)
		return c.Next()
	}
}

// RequirePrivilege lets the request through only when the token grants code.
func RequirePrivilege(code string) fiber.Handler {
	return requirePrivileges("Forbidden: requires '"+code+"' privilege", code)
}

// RequireAnyPrivilege lets the request through when any of codes is granted.
func RequireAnyPrivilege(codes ...string) fiber.Handler {
	return requirePrivileges("Forbidden: requires one of "+strings.Join(codes, ", ")+" privileges", codes...)
}

func requirePrivileges(denied string, codes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		granted, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}
		for _, have := range granted {
			for _, want := range codes {
				if have == want {
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": denied})
	}
}
