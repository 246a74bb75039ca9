package auth

import "errors"

var (
	ErrFieldsRequired    = errors.New("Name, email and password are required")
	ErrInvalidName       = errors.New("Invalid name")
	ErrInvalidEmailInput = errors.New("Invalid email address")
	ErrWeakPassword      = errors.New("Password must be at least 8 characters with a letter, number and special character")
	ErrEmailTaken        = errors.New("An account with this email already exists")
	ErrInvalidEmail      = errors.New("Invalid Email")
	ErrIncorrectPassword = errors.New("Incorrect Password")
	ErrNotVerified       = errors.New("Email not verified")
	ErrNotApproved       = errors.New("Account pending admin approval")
	ErrBlacklisted       = errors.New("Account has been blacklisted")
	ErrInvalidOTP        = errors.New("Invalid OTP")
	ErrOTPExpired        = errors.New("OTP has expired")
	ErrResendTooSoon     = errors.New("Please wait before requesting another code")
	ErrNotAuthenticated  = errors.New("Not authenticated")
)
