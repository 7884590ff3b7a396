package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dealdesk/backend/internal/config"
)

// UserIDKey is the locals key carrying the authenticated user's id.
const UserIDKey = "user_id"

// AdminAuth guards the admin API. The configured key is either the raw
// token or a bcrypt hash of it (produced by cmd/keygen); an empty key
// disables the check for local development. The acting user id comes from
// the X-User-Id header set by the session layer in front of this service.
func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := cfg.Auth.AdminAPIKey
		if apiKey == "" {
			c.Locals(UserIDKey, c.Get("X-User-Id"))
			return c.Next()
		}

		headerToken := c.Get("X-Admin-Token")
		if headerToken == "" {
			auth := c.Get("Authorization")
			const prefix = "Bearer "
			if strings.HasPrefix(auth, prefix) {
				headerToken = auth[len(prefix):]
			}
		}

		if !tokenMatches(apiKey, headerToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals(UserIDKey, c.Get("X-User-Id"))
		return c.Next()
	}
}

func tokenMatches(configured, presented string) bool {
	if presented == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)) == nil
	}
	return configured == presented
}

// UserID returns the authenticated user id for the request, or "".
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}
