package services

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "tally/internal/errors"
	"tally/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateOrDontUser inserts the user unless a row with the same id, name or
// email already exists. It reports whether a row was written.
func (s *userService) CreateOrDontUser(ctx context.Context, userID, name, email string) (bool, error) {
	if userID == "" || name == "" || email == "" {
		return false, apperrors.WithMessage(apperrors.ErrInvalidInput, "id, name and email are required")
	}

	user := &models.User{
		Base:              models.Base{ID: userID},
		Name:              name,
		Email:             email,
		IsActive:          true,
		BillingCycleStart: 1,
		BillingCycleEnd:   31,
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return false, dbError(result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetUserByID returns the user as a zero- or one-element slice.
func (s *userService) GetUserByID(ctx context.Context, userID string) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&users).Error; err != nil {
		return nil, dbError(err)
	}
	return users, nil
}
