package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// billingPeriodService handles billing period business logic.
type billingPeriodService struct {
	db *gorm.DB
}

// NewBillingPeriodService creates a new BillingPeriodServicer.
func NewBillingPeriodService(db *gorm.DB) BillingPeriodServicer {
	return &billingPeriodService{db: db}
}

// CreateBillingPeriod creates a billing period for the user
func (s *billingPeriodService) CreateBillingPeriod(ctx context.Context, userID, name string, startDate, endDate int64, isActive bool) (*models.BillingPeriod, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if endDate <= startDate {
		return nil, apperrors.ErrInvalidPeriodRange
	}

	period := &models.BillingPeriod{
		UserID:    userID,
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  isActive,
	}
	if err := s.db.WithContext(ctx).Create(period).Error; err != nil {
		return nil, dbError(err)
	}
	return period, nil
}

// GetUserBillingPeriods retrieves a paginated list of billing periods, latest start first.
func (s *billingPeriodService) GetUserBillingPeriods(ctx context.Context, userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.BillingPeriod], error) {
	query := s.db.WithContext(ctx).Model(&models.BillingPeriod{}).Where("user_id = ?", userID)
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	result, err := pagination.List[models.BillingPeriod](query, page, "start_date DESC, id DESC")
	if err != nil {
		return nil, dbError(err)
	}
	return result, nil
}

// DeleteBillingPeriod deletes the user's billing period together with its expenses.
func (s *billingPeriodService) DeleteBillingPeriod(ctx context.Context, userID, periodID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", periodID, userID).
		Delete(&models.BillingPeriod{})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBillingPeriodNotFound
	}
	return nil
}
