package auth

import (
	"context"

	"smartfolio-backend/internal/middleware"
	"smartfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

var authStatus = map[error]int{
	ErrFieldsRequired:    fiber.StatusBadRequest,
	ErrInvalidName:       fiber.StatusBadRequest,
	ErrInvalidEmailInput: fiber.StatusBadRequest,
	ErrWeakPassword:      fiber.StatusBadRequest,
	ErrEmailTaken:        fiber.StatusBadRequest,
	ErrInvalidEmail:      fiber.StatusUnauthorized,
	ErrIncorrectPassword: fiber.StatusUnauthorized,
	ErrNotVerified:       fiber.StatusForbidden,
	ErrNotApproved:       fiber.StatusForbidden,
	ErrBlacklisted:       fiber.StatusForbidden,
	ErrInvalidOTP:        fiber.StatusBadRequest,
	ErrOTPExpired:        fiber.StatusBadRequest,
	ErrResendTooSoon:     fiber.StatusTooManyRequests,
}

func authError(c *fiber.Ctx, err error) error {
	if code, ok := authStatus[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Register POST /api/v1/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Register(c.Context(), in)
	if err != nil {
		return authError(c, err)
	}
	return response.SuccessCreated(c, "Registration successful, check your email for the verification code", fiber.Map{
		"user_id": user.UserID,
		"email":   user.Email,
	}, nil)
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP POST /api/v1/auth/verify-otp
func (h *Handlers) VerifyOTP(c *fiber.Ctx) error {
	var in otpRequest
	if err := c.BodyParser(&in); err != nil || in.Email == "" || in.OTP == "" {
		return response.Error(c, "Email and OTP are required", fiber.StatusBadRequest, nil)
	}
	if _, err := h.Service.VerifyOTP(c.Context(), in.Email, in.OTP); err != nil {
		return authError(c, err)
	}
	return response.Success(c, "Email verified, your account is pending admin approval", nil, nil)
}

// ResendOTP POST /api/v1/auth/resend-otp
func (h *Handlers) ResendOTP(c *fiber.Ctx) error {
	var in otpRequest
	if err := c.BodyParser(&in); err != nil || in.Email == "" {
		return response.Error(c, "Email is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.ResendOTP(c.Context(), in.Email); err != nil {
		return authError(c, err)
	}
	return response.Success(c, "Verification code sent", nil, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login — authenticate, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		return authError(c, err)
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID: user.UserID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"user_id": user.UserID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
	}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	u := middleware.SessionUserFrom(c)
	if u == nil {
		return response.Unauthorized(c, ErrNotAuthenticated.Error())
	}
	return response.Success(c, "Authenticated", u, nil)
}

// Logout DELETE /api/v1/auth/logout — destroy session, clear cookie and Redis key.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" && h.Rdb != nil {
		h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid)
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out", nil, nil)
}

type forgotRequest struct {
	Email string `json:"email"`
}

// ForgotPassword POST /api/v1/auth/forgot-password
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var in forgotRequest
	if err := c.BodyParser(&in); err != nil || in.Email == "" {
		return response.Error(c, "Email is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.ForgotPassword(c.Context(), in.Email); err != nil {
		return authError(c, err)
	}
	return response.Success(c, "If the email exists, a reset code has been sent", nil, nil)
}

type resetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ResetPassword POST /api/v1/auth/reset-password
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var in resetRequest
	if err := c.BodyParser(&in); err != nil || in.Email == "" || in.OTP == "" || in.NewPassword == "" {
		return response.Error(c, "Email, OTP and new password are required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.ResetPassword(c.Context(), in.Email, in.OTP, in.NewPassword); err != nil {
		return authError(c, err)
	}
	return response.Success(c, "Password updated, you can now log in", nil, nil)
}
