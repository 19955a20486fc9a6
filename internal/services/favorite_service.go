package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
)

// favoriteService handles favorite expense markers.
type favoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a new FavoriteServicer.
func NewFavoriteService(db *gorm.DB) FavoriteServicer {
	return &favoriteService{db: db}
}

func (s *favoriteService) ensureOwned(ctx context.Context, userID, expenseID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Where("id = ? AND user_id = ?", expenseID, userID).
		Count(&count).Error; err != nil {
		return dbError(err)
	}
	if count == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// AddFavorite marks the user's expense as a favorite. Marking it twice
// returns the existing marker.
func (s *favoriteService) AddFavorite(ctx context.Context, userID, expenseID string) (*models.FavoriteExpense, error) {
	if err := s.ensureOwned(ctx, userID, expenseID); err != nil {
		return nil, err
	}

	var favorite models.FavoriteExpense
	if err := s.db.WithContext(ctx).
		Where(models.FavoriteExpense{ExpenseID: expenseID}).
		FirstOrCreate(&favorite).Error; err != nil {
		return nil, dbError(err)
	}
	return &favorite, nil
}

// RemoveFavorite clears the favorite marker on the user's expense.
func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, expenseID string) error {
	if err := s.ensureOwned(ctx, userID, expenseID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Delete(&models.FavoriteExpense{})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrFavoriteNotFound
	}
	return nil
}

// ListFavorites returns the user's favorited expenses, newest first.
func (s *favoriteService) ListFavorites(ctx context.Context, userID string) ([]models.Expense, error) {
	expenses := []models.Expense{}
	err := s.db.WithContext(ctx).
		Joins("JOIN favorite_expenses ON favorite_expenses.expense_id = expenses.id").
		Where("expenses.user_id = ?", userID).
		Order("expenses.created_at DESC, expenses.id DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, dbError(err)
	}
	return expenses, nil
}
