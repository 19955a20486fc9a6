package services

import (
	"context"
	"testing"

	"tally/internal/models"
	"tally/internal/pagination"
	"tally/internal/testutil"
)

func TestCreateRecurringExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("with_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringExpenseService(db, "ZAR")
		user := testutil.CreateTestUser(t, db)

		dom := 25
		template, err := svc.CreateRecurringExpense(ctx, user.ID, CreateRecurringExpenseInput{
			Name:            "Streaming",
			Amount:          299,
			RecurrenceType:  models.RecurrenceMonthly,
			DayOfRecurrence: &dom,
			Items: []RecurringItemInput{
				{Name: "Video", Amount: 199},
				{Name: "Music", Amount: 100},
			},
		})
		testutil.AssertNoError(t, err)

		if template.Currency != "ZAR" {
			t.Errorf("expected default currency, got %s", template.Currency)
		}
		if template.RecurrenceInterval != 1 {
			t.Errorf("expected default interval 1, got %d", template.RecurrenceInterval)
		}

		loaded, err := svc.GetRecurringExpenseByID(ctx, user.ID, template.ID)
		testutil.AssertNoError(t, err)
		if len(loaded.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(loaded.Items))
		}
		if loaded.Items[0].Name != "Video" {
			t.Errorf("expected items in insertion order, got %s first", loaded.Items[0].Name)
		}
	})

	t.Run("invalid_item_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringExpenseService(db, "ZAR")
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRecurringExpense(ctx, user.ID, CreateRecurringExpenseInput{
			Name:           "Gym",
			Amount:         500,
			RecurrenceType: models.RecurrenceMonthly,
			Items:          []RecurringItemInput{{Name: "", Amount: 10}},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		var count int64
		db.Model(&models.RecurringExpense{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no templates, got %d", count)
		}
	})
}

func TestGetUserRecurringExpenses(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewRecurringExpenseService(db, "ZAR")
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestRecurringExpense(t, db, user.ID)
	testutil.CreateTestRecurringExpense(t, db, user.ID)
	testutil.CreateTestRecurringExpense(t, db, other.ID)

	result, err := svc.GetUserRecurringExpenses(ctx, user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 {
		t.Errorf("expected 2 templates, got %d", result.TotalItems)
	}
	if result.PageSize != 20 {
		t.Errorf("expected default page size 20, got %d", result.PageSize)
	}
}

func TestDeleteRecurringExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("detaches_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringExpenseService(db, "ZAR")
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestRecurringExpense(t, db, user.ID)

		expense := testutil.CreateTestExpense(t, db, user.ID)
		db.Model(expense).Updates(map[string]interface{}{"recurring_expense_id": template.ID, "is_recurring": true})

		testutil.AssertNoError(t, svc.DeleteRecurringExpense(ctx, user.ID, template.ID))

		var reloaded models.Expense
		if err := db.First(&reloaded, "id = ?", expense.ID).Error; err != nil {
			t.Fatalf("expected expense to survive: %v", err)
		}
		if reloaded.RecurringExpenseID != nil {
			t.Errorf("expected recurring_expense_id to be cleared, got %v", *reloaded.RecurringExpenseID)
		}

		var items int64
		db.Model(&models.RecurringExpenseItem{}).Where("recurring_expense_id = ?", template.ID).Count(&items)
		if items != 0 {
			t.Errorf("expected template items to be removed, got %d", items)
		}
	})

	t.Run("foreign_template", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringExpenseService(db, "ZAR")
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestRecurringExpense(t, db, owner.ID)

		err := svc.DeleteRecurringExpense(ctx, other.ID, template.ID)
		testutil.AssertAppError(t, err, "RECURRING_EXPENSE_NOT_FOUND")
	})
}
