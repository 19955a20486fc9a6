package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"

	"tally/internal/models"
	"tally/internal/uuid"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique name and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	n := nextID()
	user := &models.User{
		Base:              models.Base{ID: uuid.New()},
		Name:              fmt.Sprintf("%s %d", gofakeit.Name(), n),
		Email:             fmt.Sprintf("user%d@test.com", n),
		IsActive:          true,
		BillingCycleStart: 1,
		BillingCycleEnd:   31,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense creates a pending ZAR expense for the user.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string) *models.Expense {
	t.Helper()
	return CreateTestExpenseWithAmount(t, db, userID, gofakeit.Float64Range(1, 5000))
}

// CreateTestExpenseWithAmount creates an expense with the given amount.
func CreateTestExpenseWithAmount(t *testing.T, db *gorm.DB, userID string, amount float64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:   userID,
		Name:     fmt.Sprintf("%s %d", gofakeit.ProductName(), nextID()),
		Amount:   amount,
		Currency: "ZAR",
		Status:   models.ExpenseStatusPending,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestExpenseItem adds a line item to an expense.
func CreateTestExpenseItem(t *testing.T, db *gorm.DB, expenseID string, amount float64) *models.ExpenseItem {
	t.Helper()

	item := &models.ExpenseItem{
		ExpenseID: expenseID,
		Name:      gofakeit.ProductName(),
		Amount:    amount,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test expense item: %v", err)
	}
	return item
}

// CreateTestGroceryItem adds a grocery item to an expense.
func CreateTestGroceryItem(t *testing.T, db *gorm.DB, expenseID string, amount float64) *models.GroceryItem {
	t.Helper()

	brand := gofakeit.Company()
	item := &models.GroceryItem{
		ExpenseID: expenseID,
		Name:      gofakeit.Fruit(),
		Brand:     &brand,
		Amount:    amount,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test grocery item: %v", err)
	}
	return item
}

// CreateTestBillingPeriod creates an active 30-day billing period starting at start (ms).
func CreateTestBillingPeriod(t *testing.T, db *gorm.DB, userID string, start int64) *models.BillingPeriod {
	t.Helper()

	period := &models.BillingPeriod{
		UserID:    userID,
		Name:      fmt.Sprintf("Period %d", nextID()),
		StartDate: start,
		EndDate:   start + 30*24*60*60*1000,
		IsActive:  true,
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test billing period: %v", err)
	}
	return period
}

// CreateTestRecurringExpense creates a monthly recurring template with one item.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, userID string) *models.RecurringExpense {
	t.Helper()

	template := &models.RecurringExpense{
		UserID:             userID,
		Name:               fmt.Sprintf("Subscription %d", nextID()),
		Amount:             199,
		Currency:           "ZAR",
		RecurrenceType:     models.RecurrenceMonthly,
		RecurrenceInterval: 1,
		IsActive:           true,
		Items: []models.RecurringExpenseItem{
			{Name: "Base plan", Amount: 199},
		},
	}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return template
}
