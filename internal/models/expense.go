package models

import (
	"tally/internal/uuid"

	"gorm.io/gorm"
)

// ExpenseStatus represents the payment state of an expense.
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusPaid      ExpenseStatus = "paid"
	ExpenseStatusOverdue   ExpenseStatus = "overdue"
	ExpenseStatusCancelled ExpenseStatus = "cancelled"
)

// Expense is a single spend owned by a user.
type Expense struct {
	Base
	UserID             string        `gorm:"not null;index" json:"user_id"`
	BillingPeriodID    *string       `gorm:"index" json:"billing_period_id"`
	RecurringExpenseID *string       `json:"recurring_expense_id"`
	Name               string        `gorm:"not null" json:"name"`
	Amount             float64       `gorm:"not null" json:"amount"`
	Description        *string       `json:"description"`
	Category           *string       `json:"category"`
	PaymentMethod      *string       `json:"payment_method"`
	Notes              *string       `json:"notes"`
	Currency           string        `gorm:"not null" json:"currency"`
	Status             ExpenseStatus `gorm:"not null" json:"status"`
	DueDate            *int64        `json:"due_date"`
	PaidDate           *int64        `json:"paid_date"`
	IsRecurring        bool          `gorm:"not null" json:"is_recurring"`
	Items              []ExpenseItem `gorm:"foreignKey:ExpenseID" json:"items,omitempty"`
	GroceryItems       []GroceryItem `gorm:"foreignKey:ExpenseID" json:"grocery_items,omitempty"`
	ItemsTotal         *float64      `gorm:"-" json:"items_total,omitempty"`
}

// ExpenseItem is a line item of an expense.
type ExpenseItem struct {
	Base
	ExpenseID   string  `gorm:"not null;index" json:"expense_id"`
	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description"`
	Amount      float64 `gorm:"not null" json:"amount"`
}

// GroceryItem is a grocery line item of an expense.
type GroceryItem struct {
	Base
	ExpenseID   string  `gorm:"not null;index" json:"expense_id"`
	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description"`
	Brand       *string `json:"brand"`
	ImageURL    *string `json:"image_url"`
	Amount      float64 `gorm:"not null" json:"amount"`
}

// FavoriteExpense marks an expense as a favorite.
type FavoriteExpense struct {
	ID        string `gorm:"primaryKey" json:"id"`
	ExpenseID string `gorm:"not null;uniqueIndex" json:"expense_id"`
}

// BeforeCreate generates the primary key.
func (f *FavoriteExpense) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New()
	}
	return nil
}
