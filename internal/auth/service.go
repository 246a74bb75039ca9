package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"smartfolio-backend/internal/domain"
	"smartfolio-backend/internal/emails"
	"smartfolio-backend/internal/pkg/validation"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpResendPrefix = "otp_resend:"
const otpResendWindow = 60 * time.Second

// Service implements registration, email OTP verification and login.
// Mailer may be nil (emails skipped, e.g. tests); Rdb may be nil (no resend
// throttle).
type Service struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Mailer emails.Sender
}

// RegisterInput for the register request body.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an unverified account and emails a verification OTP.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, ErrFieldsRequired
	}
	if !validation.IsValidName(in.Name) {
		return nil, ErrInvalidName
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmailInput
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrWeakPassword
	}

	var existing domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, digest, expire := domain.GenerateOTP()
	user := domain.User{
		Name:                       in.Name,
		Email:                      in.Email,
		PasswordHash:               string(hash),
		Role:                       "user",
		EmailVerificationOTP:       &digest,
		EmailVerificationOTPExpire: &expire,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.sendOTP(ctx, &user, code, false)
	return &user, nil
}

// VerifyOTP marks the account verified when the code matches and is fresh.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*domain.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.EmailVerificationOTP == nil || domain.HashOTP(code) != *user.EmailVerificationOTP {
		return nil, ErrInvalidOTP
	}
	if user.EmailVerificationOTPExpire == nil || time.Now().After(*user.EmailVerificationOTPExpire) {
		return nil, ErrOTPExpired
	}

	user.IsVerified = true
	user.EmailVerificationOTP = nil
	user.EmailVerificationOTPExpire = nil
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ResendOTP regenerates and re-sends the verification code, throttled to one
// request per minute per email via Redis.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.throttleResend(ctx, user.Email); err != nil {
		return err
	}

	code, digest, expire := domain.GenerateOTP()
	user.EmailVerificationOTP = &digest
	user.EmailVerificationOTPExpire = &expire
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	s.sendOTP(ctx, user, code, false)
	return nil
}

// Login verifies credentials and account standing, returning the user for the
// session. Unverified, unapproved and blacklisted accounts cannot log in.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, ErrFieldsRequired
	}
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	if user.IsBlacklisted {
		return nil, ErrBlacklisted
	}
	if !user.IsApprovedByAdmin {
		return nil, ErrNotApproved
	}
	return user, nil
}

// ForgotPassword issues a password-reset OTP. Unknown emails return as if
// successful so the endpoint cannot be used to probe accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if errors.Is(err, ErrInvalidEmail) {
		return nil
	}
	if err != nil {
		return err
	}

	code, digest, expire := domain.GenerateOTP()
	user.PasswordResetOTP = &digest
	user.PasswordResetOTPExpire = &expire
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	s.sendOTP(ctx, user, code, true)
	return nil
}

// ResetPassword sets a new password when the reset OTP matches and is fresh.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !validation.IsValidPassword(newPassword) {
		return ErrWeakPassword
	}
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.PasswordResetOTP == nil || domain.HashOTP(code) != *user.PasswordResetOTP {
		return ErrInvalidOTP
	}
	if user.PasswordResetOTPExpire == nil || time.Now().After(*user.PasswordResetOTPExpire) {
		return ErrOTPExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.PasswordResetOTP = nil
	user.PasswordResetOTPExpire = nil
	return s.DB.WithContext(ctx).Save(user).Error
}

func (s *Service) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) throttleResend(ctx context.Context, email string) error {
	if s.Rdb == nil {
		return nil
	}
	ok, err := s.Rdb.SetNX(ctx, otpResendPrefix+email, 1, otpResendWindow).Result()
	if err != nil {
		// Redis being down should not block verification.
		log.Warn().Err(err).Msg("OTP resend throttle check failed")
		return nil
	}
	if !ok {
		return ErrResendTooSoon
	}
	return nil
}

func (s *Service) sendOTP(ctx context.Context, user *domain.User, code string, reset bool) {
	if s.Mailer == nil {
		return
	}
	var err error
	if reset {
		err = s.Mailer.SendPasswordResetOTP(ctx, user.Email, user.Name, code)
	} else {
		err = s.Mailer.SendVerificationOTP(ctx, user.Email, user.Name, code)
	}
	if err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("OTP email send failed")
	}
}
