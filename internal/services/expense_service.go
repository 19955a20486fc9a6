package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db              *gorm.DB
	defaultCurrency string
}

// NewExpenseService creates a new ExpenseServicer. Expenses created without
// a currency are stored in defaultCurrency.
func NewExpenseService(db *gorm.DB, defaultCurrency string) ExpenseServicer {
	return &expenseService{db: db, defaultCurrency: defaultCurrency}
}

// CreateExpense creates a pending expense for the user.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, input CreateExpenseInput) (*models.Expense, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	db := s.db.WithContext(ctx)

	if input.BillingPeriodID != nil {
		var count int64
		if err := db.Model(&models.BillingPeriod{}).
			Where("id = ? AND user_id = ?", *input.BillingPeriodID, userID).
			Count(&count).Error; err != nil {
			return nil, dbError(err)
		}
		if count == 0 {
			return nil, apperrors.ErrBillingPeriodNotFound
		}
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	expense := &models.Expense{
		UserID:          userID,
		BillingPeriodID: input.BillingPeriodID,
		Name:            input.Name,
		Amount:          input.Amount,
		Description:     input.Description,
		Category:        input.Category,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		Currency:        currency,
		Status:          models.ExpenseStatusPending,
		DueDate:         input.DueDate,
	}

	if err := db.Create(expense).Error; err != nil {
		return nil, dbError(err)
	}

	return expense, nil
}

// GetExpensesByUserID returns the user's expenses, newest first.
func (s *expenseService) GetExpensesByUserID(ctx context.Context, userID string) ([]models.Expense, error) {
	expenses := []models.Expense{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, dbError(err)
	}
	return expenses, nil
}

// GetExpenseByID returns the expense with its items as a zero- or
// one-element slice. Another user's expense is reported as absent.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) ([]models.Expense, error) {
	expenses := []models.Expense{}
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("GroceryItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND user_id = ?", expenseID, userID).
		Limit(1).
		Find(&expenses).Error
	if err != nil {
		return nil, dbError(err)
	}

	for i := range expenses {
		total := itemsTotal(&expenses[i])
		expenses[i].ItemsTotal = &total
	}
	return expenses, nil
}

// itemsTotal sums line and grocery item amounts without float drift.
func itemsTotal(expense *models.Expense) float64 {
	sum := decimal.Zero
	for _, item := range expense.Items {
		sum = sum.Add(decimal.NewFromFloat(item.Amount))
	}
	for _, item := range expense.GroceryItems {
		sum = sum.Add(decimal.NewFromFloat(item.Amount))
	}
	return sum.InexactFloat64()
}

// getOwnedExpense loads an expense that belongs to the user.
func (s *expenseService) getOwnedExpense(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, dbError(err)
	}
	return &expense, nil
}

// UpdateExpense applies a partial update to the user's expense.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.getOwnedExpense(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
		}
		updates["name"] = *update.Name
	}
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
		}
		updates["amount"] = *update.Amount
	}
	if update.Currency != nil {
		updates["currency"] = *update.Currency
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Category != nil {
		updates["category"] = *update.Category
	}
	if update.PaymentMethod != nil {
		updates["payment_method"] = *update.PaymentMethod
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.DueDate != nil {
		updates["due_date"] = *update.DueDate
	}
	if update.PaidDate != nil {
		updates["paid_date"] = *update.PaidDate
	}
	if update.Status != nil {
		updates["status"] = *update.Status
		if *update.Status == models.ExpenseStatusPaid && update.PaidDate == nil && expense.PaidDate == nil {
			updates["paid_date"] = time.Now().UnixMilli()
		}
	}

	if len(updates) == 0 {
		return expense, nil
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(expense).Updates(updates).Error; err != nil {
		return nil, dbError(err)
	}
	if err := db.First(expense, "id = ?", expense.ID).Error; err != nil {
		return nil, dbError(err)
	}

	return expense, nil
}

// DeleteExpense removes the user's expense. Items, grocery items and the
// favorite marker go with it through the foreign key cascade.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", expenseID, userID).
		Delete(&models.Expense{})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// AddExpenseItem adds a line item to the user's expense.
func (s *expenseService) AddExpenseItem(ctx context.Context, userID, expenseID, name string, amount float64, description *string) (*models.ExpenseItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	if _, err := s.getOwnedExpense(ctx, userID, expenseID); err != nil {
		return nil, err
	}

	item := &models.ExpenseItem{
		ExpenseID:   expenseID,
		Name:        name,
		Description: description,
		Amount:      amount,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, dbError(err)
	}
	return item, nil
}

// DeleteExpenseItem removes a line item from the user's expense.
func (s *expenseService) DeleteExpenseItem(ctx context.Context, userID, expenseID, itemID string) error {
	if _, err := s.getOwnedExpense(ctx, userID, expenseID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND expense_id = ?", itemID, expenseID).
		Delete(&models.ExpenseItem{})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseItemNotFound
	}
	return nil
}

// AddGroceryItem adds a grocery item to the user's expense.
func (s *expenseService) AddGroceryItem(ctx context.Context, userID, expenseID string, input GroceryItemInput) (*models.GroceryItem, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	if _, err := s.getOwnedExpense(ctx, userID, expenseID); err != nil {
		return nil, err
	}

	item := &models.GroceryItem{
		ExpenseID:   expenseID,
		Name:        input.Name,
		Description: input.Description,
		Brand:       input.Brand,
		ImageURL:    input.ImageURL,
		Amount:      input.Amount,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, dbError(err)
	}
	return item, nil
}
