package middleware

import (
	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/config"
)

// AdminMiddleware checks if the authenticated user is a superadmin.
// Users with role "admin" from JWT claims are treated as superadmins, as is
// anyone on the explicit superadmin list.
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		isSuperadmin := false

		if role, ok := c.Locals("user_role").(string); ok && role == "admin" {
			isSuperadmin = true
		}

		if !isSuperadmin {
			for _, adminID := range cfg.SuperadminUserIDs {
				if adminID == userID {
					isSuperadmin = true
					break
				}
			}
		}

		if !isSuperadmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Superadmin access required",
			})
		}

		c.Locals("is_superadmin", true)
		return c.Next()
	}
}

// IsSuperadmin reports whether a user ID is on the superadmin list
func IsSuperadmin(userID string, cfg *config.Config) bool {
	for _, adminID := range cfg.SuperadminUserIDs {
		if adminID == userID {
			return true
		}
	}
	return false
}
