package middleware

import (
	"github.com/gofiber/fiber/v2"

	"onlinecourse/backend/config"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "userID"

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// AdminMiddleware runs after AuthMiddleware and lets only users with the admin
// role through.
func AdminMiddleware(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(LocalUserID).(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		user, err := s.GetUser(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - Admin access required",
			})
		}

		return c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(LocalUserID).(uint)
	return userID, ok
}
