package services

import (
	"context"

	"tally/internal/models"
	"tally/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateOrDontUser(ctx context.Context, userID, name, email string) (bool, error)
	GetUserByID(ctx context.Context, userID string) ([]models.User, error)
}

// CreateExpenseInput holds the fields accepted when creating an expense.
type CreateExpenseInput struct {
	Name            string
	Amount          float64
	Currency        string
	Description     *string
	Category        *string
	PaymentMethod   *string
	Notes           *string
	BillingPeriodID *string
	DueDate         *int64
}

// ExpenseUpdate holds a partial expense update. Nil fields are left unchanged.
type ExpenseUpdate struct {
	Name          *string
	Amount        *float64
	Currency      *string
	Description   *string
	Category      *string
	PaymentMethod *string
	Notes         *string
	Status        *models.ExpenseStatus
	DueDate       *int64
	PaidDate      *int64
}

// GroceryItemInput holds the fields of a new grocery item.
type GroceryItemInput struct {
	Name        string
	Amount      float64
	Brand       *string
	Description *string
	ImageURL    *string
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID string, input CreateExpenseInput) (*models.Expense, error)
	GetExpensesByUserID(ctx context.Context, userID string) ([]models.Expense, error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	AddExpenseItem(ctx context.Context, userID, expenseID, name string, amount float64, description *string) (*models.ExpenseItem, error)
	DeleteExpenseItem(ctx context.Context, userID, expenseID, itemID string) error
	AddGroceryItem(ctx context.Context, userID, expenseID string, input GroceryItemInput) (*models.GroceryItem, error)
}

// FavoriteServicer defines the contract for favorite expenses.
type FavoriteServicer interface {
	AddFavorite(ctx context.Context, userID, expenseID string) (*models.FavoriteExpense, error)
	RemoveFavorite(ctx context.Context, userID, expenseID string) error
	ListFavorites(ctx context.Context, userID string) ([]models.Expense, error)
}

// BillingPeriodServicer defines the contract for billing period business logic.
type BillingPeriodServicer interface {
	CreateBillingPeriod(ctx context.Context, userID, name string, startDate, endDate int64, isActive bool) (*models.BillingPeriod, error)
	GetUserBillingPeriods(ctx context.Context, userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.BillingPeriod], error)
	DeleteBillingPeriod(ctx context.Context, userID, periodID string) error
}

// RecurringItemInput is a line item of a new recurring template.
type RecurringItemInput struct {
	Name        string
	Amount      float64
	Description *string
}

// CreateRecurringExpenseInput holds the fields of a new recurring template.
type CreateRecurringExpenseInput struct {
	Name               string
	Amount             float64
	Currency           string
	Description        *string
	Category           *string
	PaymentMethod      *string
	Notes              *string
	RecurrenceType     models.RecurrenceType
	RecurrenceInterval int
	DayOfRecurrence    *int
	Items              []RecurringItemInput
}

// RecurringExpenseServicer defines the contract for recurring expense templates.
type RecurringExpenseServicer interface {
	CreateRecurringExpense(ctx context.Context, userID string, input CreateRecurringExpenseInput) (*models.RecurringExpense, error)
	GetUserRecurringExpenses(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringExpense], error)
	GetRecurringExpenseByID(ctx context.Context, userID, id string) (*models.RecurringExpense, error)
	DeleteRecurringExpense(ctx context.Context, userID, id string) error
}
