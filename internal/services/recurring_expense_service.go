package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// recurringExpenseService handles recurring expense templates.
type recurringExpenseService struct {
	db              *gorm.DB
	defaultCurrency string
}

// NewRecurringExpenseService creates a new RecurringExpenseServicer.
func NewRecurringExpenseService(db *gorm.DB, defaultCurrency string) RecurringExpenseServicer {
	return &recurringExpenseService{db: db, defaultCurrency: defaultCurrency}
}

// CreateRecurringExpense stores a template and its items atomically.
func (s *recurringExpenseService) CreateRecurringExpense(ctx context.Context, userID string, input CreateRecurringExpenseInput) (*models.RecurringExpense, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}
	if input.RecurrenceType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurrence_type is required")
	}
	if input.RecurrenceInterval < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurrence_interval must be at least 1")
	}
	if input.DayOfRecurrence != nil && (*input.DayOfRecurrence < 1 || *input.DayOfRecurrence > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "day_of_recurrence must be between 1 and 31")
	}

	items := make([]models.RecurringExpenseItem, 0, len(input.Items))
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" || item.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("items[%d] needs a name and an amount greater than 0", i))
		}
		items = append(items, models.RecurringExpenseItem{
			Name:        item.Name,
			Description: item.Description,
			Amount:      item.Amount,
		})
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	interval := input.RecurrenceInterval
	if interval == 0 {
		interval = 1
	}

	template := &models.RecurringExpense{
		UserID:             userID,
		Name:               input.Name,
		Amount:             input.Amount,
		Description:        input.Description,
		Category:           input.Category,
		PaymentMethod:      input.PaymentMethod,
		Notes:              input.Notes,
		Currency:           currency,
		RecurrenceType:     input.RecurrenceType,
		RecurrenceInterval: interval,
		DayOfRecurrence:    input.DayOfRecurrence,
		IsActive:           true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(template).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].RecurringExpenseID = template.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, dbError(err)
	}

	template.Items = items
	return template, nil
}

// GetUserRecurringExpenses retrieves a paginated list of the user's templates.
func (s *recurringExpenseService) GetUserRecurringExpenses(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringExpense], error) {
	query := s.db.WithContext(ctx).Model(&models.RecurringExpense{}).Where("user_id = ?", userID)

	result, err := pagination.List[models.RecurringExpense](query, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, dbError(err)
	}
	return result, nil
}

// GetRecurringExpenseByID loads the user's template with its items.
func (s *recurringExpenseService) GetRecurringExpenseByID(ctx context.Context, userID, id string) (*models.RecurringExpense, error) {
	var template models.RecurringExpense
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringExpenseNotFound
		}
		return nil, dbError(err)
	}
	return &template, nil
}

// DeleteRecurringExpense deletes the user's template. Expenses generated from
// it keep existing without the back reference.
func (s *recurringExpenseService) DeleteRecurringExpense(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.RecurringExpense{})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecurringExpenseNotFound
	}
	return nil
}
