package admin

import (
	"context"
	"errors"
	"time"

	"smartfolio-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("User not found")

// Service implements the admin approval workflow. Approval gates trading:
// verified users stay in the pending queue until approved; blacklisting sends
// an approved user back to pending.
type Service struct {
	DB *gorm.DB
}

// PendingUsers returns verified accounts awaiting approval (blacklisted
// accounts reappear here).
func (s *Service) PendingUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.DB.WithContext(ctx).
		Where("is_verified = ? AND is_approved_by_admin = ?", true, false).
		Find(&users).Error
	return users, err
}

// ApprovedUsers returns approved, non-blacklisted accounts.
func (s *Service) ApprovedUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.DB.WithContext(ctx).
		Where("is_approved_by_admin = ? AND is_blacklisted = ?", true, false).
		Find(&users).Error
	return users, err
}

// BlacklistedUsers returns blacklisted accounts.
func (s *Service) BlacklistedUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.DB.WithContext(ctx).Where("is_blacklisted = ?", true).Find(&users).Error
	return users, err
}

// Approve marks the user approved (and clears any blacklist flag).
func (s *Service) Approve(ctx context.Context, userID uuid.UUID) error {
	return s.updateUser(ctx, userID, func(u *domain.User) {
		now := time.Now()
		u.IsApprovedByAdmin = true
		u.IsBlacklisted = false
		u.ApprovedAt = &now
	})
}

// Blacklist flags the user and revokes approval, moving them back to pending.
func (s *Service) Blacklist(ctx context.Context, userID uuid.UUID) error {
	return s.updateUser(ctx, userID, func(u *domain.User) {
		u.IsBlacklisted = true
		u.IsApprovedByAdmin = false
	})
}

// Unblacklist clears the blacklist flag without granting approval.
func (s *Service) Unblacklist(ctx context.Context, userID uuid.UUID) error {
	return s.updateUser(ctx, userID, func(u *domain.User) {
		u.IsBlacklisted = false
	})
}

func (s *Service) updateUser(ctx context.Context, userID uuid.UUID, mutate func(*domain.User)) error {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	mutate(&user)
	return s.DB.WithContext(ctx).Save(&user).Error
}
