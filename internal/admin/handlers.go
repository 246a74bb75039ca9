package admin

import (
	"context"
	"crypto/subtle"
	"errors"

	"smartfolio-backend/internal/middleware"
	"smartfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for the admin panel endpoints.
type Handlers struct {
	Service   *Service
	AdminID   string
	AdminPass string
	Config    middleware.SessionConfig
}

type loginRequest struct {
	AdminID   string `json:"adminId"`
	AdminPass string `json:"adminPass"`
}

// Login POST /api/v1/admin/login — env-credential login, admin session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil || in.AdminID == "" || in.AdminPass == "" {
		return response.Error(c, "Admin ID and password are required", fiber.StatusBadRequest, nil)
	}

	if h.AdminID == "" ||
		subtle.ConstantTimeCompare([]byte(in.AdminID), []byte(h.AdminID)) != 1 ||
		subtle.ConstantTimeCompare([]byte(in.AdminPass), []byte(h.AdminPass)) != 1 {
		return response.Unauthorized(c, "Invalid admin credentials")
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID: "admin",
		Name:   "SmartFolio Admin",
		Email:  h.AdminID,
		Role:   "admin",
	})
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Admin login successful", fiber.Map{
		"user_id": "admin",
		"name":    "SmartFolio Admin",
		"email":   h.AdminID,
		"role":    "admin",
	}, nil)
}

// PendingUsers GET /api/v1/admin/pending-users
func (h *Handlers) PendingUsers(c *fiber.Ctx) error {
	users, err := h.Service.PendingUsers(c.Context())
	if err != nil {
		return response.Error(c, "Error fetching pending users", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Pending users fetched", users, nil)
}

// ApprovedUsers GET /api/v1/admin/approved-users
func (h *Handlers) ApprovedUsers(c *fiber.Ctx) error {
	users, err := h.Service.ApprovedUsers(c.Context())
	if err != nil {
		return response.Error(c, "Error fetching approved users", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Approved users fetched", users, nil)
}

// BlacklistedUsers GET /api/v1/admin/blacklisted-users
func (h *Handlers) BlacklistedUsers(c *fiber.Ctx) error {
	users, err := h.Service.BlacklistedUsers(c.Context())
	if err != nil {
		return response.Error(c, "Error fetching blacklisted users", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Blacklisted users fetched", users, nil)
}

// Approve PUT /api/v1/admin/approve/:id
func (h *Handlers) Approve(c *fiber.Ctx) error {
	return h.mutate(c, h.Service.Approve, "User approved")
}

// Blacklist PUT /api/v1/admin/blacklist/:id
func (h *Handlers) Blacklist(c *fiber.Ctx) error {
	return h.mutate(c, h.Service.Blacklist, "User has been blacklisted")
}

// Unblacklist PUT /api/v1/admin/unblacklist/:id
func (h *Handlers) Unblacklist(c *fiber.Ctx) error {
	return h.mutate(c, h.Service.Unblacklist, "User removed from blacklist")
}

func (h *Handlers) mutate(c *fiber.Ctx, fn func(ctx context.Context, id uuid.UUID) error, okMsg string) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	if err := fn(c.Context(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, okMsg, nil, nil)
}
