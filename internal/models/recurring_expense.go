package models

// RecurrenceType represents how often a recurring expense repeats.
type RecurrenceType string

const (
	RecurrenceWeekly    RecurrenceType = "weekly"
	RecurrenceBiWeekly  RecurrenceType = "bi-weekly"
	RecurrenceMonthly   RecurrenceType = "monthly"
	RecurrenceQuarterly RecurrenceType = "quarterly"
	RecurrenceYearly    RecurrenceType = "yearly"
)

// RecurringExpense is a template describing an expense that repeats.
type RecurringExpense struct {
	Base
	UserID             string                 `gorm:"not null;index" json:"user_id"`
	Name               string                 `gorm:"not null" json:"name"`
	Amount             float64                `gorm:"not null" json:"amount"`
	Description        *string                `json:"description"`
	Category           *string                `json:"category"`
	PaymentMethod      *string                `json:"payment_method"`
	Notes              *string                `json:"notes"`
	Currency           string                 `gorm:"not null" json:"currency"`
	RecurrenceType     RecurrenceType         `gorm:"not null" json:"recurrence_type"`
	RecurrenceInterval int                    `gorm:"not null" json:"recurrence_interval"`
	DayOfRecurrence    *int                   `json:"day_of_recurrence"`
	IsActive           bool                   `gorm:"not null" json:"is_active"`
	Items              []RecurringExpenseItem `gorm:"foreignKey:RecurringExpenseID" json:"items,omitempty"`
}

// RecurringExpenseItem is a line item of a recurring expense template.
type RecurringExpenseItem struct {
	Base
	RecurringExpenseID string  `gorm:"not null;index" json:"recurring_expense_id"`
	Name               string  `gorm:"not null" json:"name"`
	Description        *string `json:"description"`
	Amount             float64 `gorm:"not null" json:"amount"`
}
