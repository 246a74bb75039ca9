package admin

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"smartfolio-backend/internal/domain"
	"smartfolio-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdmin(t *testing.T, asAdmin bool) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	h := &Handlers{Service: &Service{DB: db}, AdminID: "admin@smartfolio.app", AdminPass: "adminpass"}

	app := fiber.New()
	if asAdmin {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", map[string]interface{}{
				"user_id": "admin", "name": "SmartFolio Admin",
				"email": "admin@smartfolio.app", "role": "admin",
			})
			return c.Next()
		})
	}
	app.Post("/login", h.Login)
	protected := app.Group("/", middleware.RequireAuth(), middleware.RequireAdmin())
	protected.Get("/pending-users", h.PendingUsers)
	protected.Get("/approved-users", h.ApprovedUsers)
	protected.Get("/blacklisted-users", h.BlacklistedUsers)
	protected.Put("/approve/:id", h.Approve)
	protected.Put("/blacklist/:id", h.Blacklist)
	protected.Put("/unblacklist/:id", h.Unblacklist)
	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, email string, verified, approved, blacklisted bool) domain.User {
	t.Helper()
	u := domain.User{
		Name: "Some User", Email: email, PasswordHash: "x", Role: "user",
		IsVerified: verified, IsApprovedByAdmin: approved, IsBlacklisted: blacklisted,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestAdminLogin(t *testing.T) {
	app, _ := setupAdmin(t, false)

	body, _ := json.Marshal(map[string]string{"adminId": "admin@smartfolio.app", "adminPass": "adminpass"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ = json.Marshal(map[string]string{"adminId": "admin@smartfolio.app", "adminPass": "nope"})
	req = httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	app, _ := setupAdmin(t, false)

	req := httptest.NewRequest("GET", "/pending-users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestApprovalWorkflow(t *testing.T) {
	app, db := setupAdmin(t, true)
	pending := seedUser(t, db, "pending@b.co", true, false, false)
	seedUser(t, db, "unverified@b.co", false, false, false)

	// verified-but-unapproved shows up in pending
	req := httptest.NewRequest("GET", "/pending-users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	users, _ := result["data"].([]interface{})
	require.Len(t, users, 1)

	// approve moves them out of pending
	req = httptest.NewRequest("PUT", "/approve/"+pending.UserID.String(), nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var u domain.User
	require.NoError(t, db.Where("user_id = ?", pending.UserID).First(&u).Error)
	assert.True(t, u.IsApprovedByAdmin)
	require.NotNil(t, u.ApprovedAt)

	// blacklist revokes approval (back to pending)
	req = httptest.NewRequest("PUT", "/blacklist/"+pending.UserID.String(), nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	require.NoError(t, db.Where("user_id = ?", pending.UserID).First(&u).Error)
	assert.True(t, u.IsBlacklisted)
	assert.False(t, u.IsApprovedByAdmin)

	req = httptest.NewRequest("PUT", "/unblacklist/"+pending.UserID.String(), nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	require.NoError(t, db.Where("user_id = ?", pending.UserID).First(&u).Error)
	assert.False(t, u.IsBlacklisted)
}

func TestApprove_UnknownUser(t *testing.T) {
	app, _ := setupAdmin(t, true)

	req := httptest.NewRequest("PUT", "/approve/6f1f6a52-0000-4000-8000-000000000000", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
