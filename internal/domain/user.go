package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Trading is only allowed once the email is
// verified and an admin has approved the account.
type User struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"column:role;not null;default:user" json:"role"`

	IsVerified        bool `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	IsApprovedByAdmin bool `gorm:"column:is_approved_by_admin;not null;default:false" json:"is_approved_by_admin"`
	IsBlacklisted     bool `gorm:"column:is_blacklisted;not null;default:false" json:"is_blacklisted"`
	ApprovedAt        *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`

	// OTPs are stored as SHA-256 hex digests, never in cleartext.
	EmailVerificationOTP       *string    `gorm:"column:email_verification_otp" json:"-"`
	EmailVerificationOTPExpire *time.Time `gorm:"column:email_verification_otp_expire" json:"-"`
	PasswordResetOTP           *string    `gorm:"column:password_reset_otp" json:"-"`
	PasswordResetOTPExpire     *time.Time `gorm:"column:password_reset_otp_expire" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

const otpTTL = 10 * time.Minute

// GenerateOTP produces a six-digit code, returning the cleartext for emailing
// plus the digest and expiry to store on the user.
func GenerateOTP() (code, digest string, expire time.Time) {
	n, _ := rand.Int(rand.Reader, big.NewInt(900000))
	code = big.NewInt(0).Add(n, big.NewInt(100000)).String()
	return code, HashOTP(code), time.Now().Add(otpTTL)
}

// HashOTP returns the SHA-256 hex digest stored at rest.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
