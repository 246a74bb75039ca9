package middleware

import (
	"smartfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// RequireAdmin ensures the session user has the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := SessionUserFrom(c)
		if u == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if u.Role != "admin" {
			return response.Error(c, "Admin access required", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// SessionUserFrom decodes the Locals user map into a SessionUser, nil if absent.
func SessionUserFrom(c *fiber.Ctx) *SessionUser {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return nil
	}
	u := &SessionUser{
		UserID: str(m["user_id"]),
		Name:   str(m["name"]),
		Email:  str(m["email"]),
		Role:   str(m["role"]),
	}
	if u.UserID == "" {
		return nil
	}
	return u
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
