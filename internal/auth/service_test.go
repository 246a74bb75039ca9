package auth

import (
	"context"
	"sync"
	"testing"

	"smartfolio-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer captures OTP codes instead of sending them.
type fakeMailer struct {
	mu         sync.Mutex
	lastVerify string
	lastReset  string
}

func (f *fakeMailer) SendVerificationOTP(ctx context.Context, toEmail, name, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastVerify = code
	return nil
}

func (f *fakeMailer) SendPasswordResetOTP(ctx context.Context, toEmail, name, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReset = code
	return nil
}

func setupAuth(t *testing.T) (*Service, *fakeMailer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mailer := &fakeMailer{}
	return &Service{DB: db, Rdb: rdb, Mailer: mailer}, mailer, db
}

const goodPassword = "hunter2!a"

func TestRegister_CreatesUnverifiedUserAndSendsOTP(t *testing.T) {
	svc, mailer, _ := setupAuth(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice Smith", Email: "Alice@Example.com", Password: goodPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.False(t, user.IsApprovedByAdmin)
	require.Len(t, mailer.lastVerify, 6)
	// cleartext code is never stored
	assert.NotEqual(t, mailer.lastVerify, *user.EmailVerificationOTP)
	assert.Equal(t, domain.HashOTP(mailer.lastVerify), *user.EmailVerificationOTP)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "", Email: "a@b.co", Password: goodPassword})
	assert.ErrorIs(t, err, ErrFieldsRequired)
	_, err = svc.Register(ctx, RegisterInput{Name: "Bob", Email: "not-an-email", Password: goodPassword})
	assert.ErrorIs(t, err, ErrInvalidEmailInput)
	_, err = svc.Register(ctx, RegisterInput{Name: "Bob", Email: "a@b.co", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.co", Password: goodPassword})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Alice Two", Email: "A@B.CO", Password: goodPassword})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyOTP_Flow(t *testing.T) {
	svc, mailer, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.co", Password: goodPassword})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "a@b.co", "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	user, err := svc.VerifyOTP(ctx, "a@b.co", mailer.lastVerify)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.EmailVerificationOTP)

	// code is single-use
	_, err = svc.VerifyOTP(ctx, "a@b.co", mailer.lastVerify)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResendOTP_Throttled(t *testing.T) {
	svc, mailer, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.co", Password: goodPassword})
	require.NoError(t, err)
	first := mailer.lastVerify

	require.NoError(t, svc.ResendOTP(ctx, "a@b.co"))
	assert.NotEqual(t, first, mailer.lastVerify)

	err = svc.ResendOTP(ctx, "a@b.co")
	assert.ErrorIs(t, err, ErrResendTooSoon)
}

func TestLogin_Gates(t *testing.T) {
	svc, mailer, db := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.co", Password: goodPassword})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.co", "wrong-password")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = svc.Login(ctx, "a@b.co", goodPassword)
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = svc.VerifyOTP(ctx, "a@b.co", mailer.lastVerify)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.co", goodPassword)
	assert.ErrorIs(t, err, ErrNotApproved)

	require.NoError(t, db.Model(&domain.User{}).Where("email = ?", "a@b.co").
		Update("is_approved_by_admin", true).Error)

	user, err := svc.Login(ctx, "a@b.co", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", user.Email)

	require.NoError(t, db.Model(&domain.User{}).Where("email = ?", "a@b.co").
		Update("is_blacklisted", true).Error)
	_, err = svc.Login(ctx, "a@b.co", goodPassword)
	assert.ErrorIs(t, err, ErrBlacklisted)
}

func TestResetPassword_Flow(t *testing.T) {
	svc, mailer, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.co", Password: goodPassword})
	require.NoError(t, err)

	// unknown emails do not leak account existence
	require.NoError(t, svc.ForgotPassword(ctx, "nobody@b.co"))

	require.NoError(t, svc.ForgotPassword(ctx, "a@b.co"))
	require.Len(t, mailer.lastReset, 6)

	err = svc.ResetPassword(ctx, "a@b.co", mailer.lastReset, "weak")
	assert.ErrorIs(t, err, ErrWeakPassword)

	const newPassword = "n3w-secret!"
	require.NoError(t, svc.ResetPassword(ctx, "a@b.co", mailer.lastReset, newPassword))

	// old password no longer works
	_, err = svc.Login(ctx, "a@b.co", goodPassword)
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}
