package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/services"
)

func setupGroceryRouter(handler *GroceryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses/:id/groceries", handler.CreateExpenseGrocery)
	auth.POST("/groceries", handler.CreateGrocery)
	return r
}

func groceryService(got *services.GroceryItemInput, gotExpense *string) *mockExpenseService {
	return &mockExpenseService{
		addGroceryItemFn: func(_, expenseID string, input services.GroceryItemInput) (*models.GroceryItem, error) {
			*got = input
			*gotExpense = expenseID
			return &models.GroceryItem{ExpenseID: expenseID, Name: input.Name, Amount: input.Amount, Brand: input.Brand}, nil
		},
	}
}

func TestGroceryHandler_CreateExpenseGrocery(t *testing.T) {
	var got services.GroceryItemInput
	var gotExpense string
	r := setupGroceryRouter(NewGroceryHandler(groceryService(&got, &gotExpense)))

	rec := doRequest(r, "POST", "/expenses/exp-1/groceries", `{"name":"Milk","amount":18.5,"brand":"Clover"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["message"] != "Grocery item created successfully" {
		t.Errorf("unexpected message %v", result["message"])
	}
	if gotExpense != "exp-1" || got.Brand == nil || *got.Brand != "Clover" {
		t.Errorf("unexpected service args %s %+v", gotExpense, got)
	}
}

func TestGroceryHandler_CreateGrocery(t *testing.T) {
	t.Run("uses expense_id from body", func(t *testing.T) {
		var got services.GroceryItemInput
		var gotExpense string
		r := setupGroceryRouter(NewGroceryHandler(groceryService(&got, &gotExpense)))

		rec := doRequest(r, "POST", "/groceries", `{"expense_id":"exp-2","name":"Eggs","amount":42}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotExpense != "exp-2" || got.Name != "Eggs" {
			t.Errorf("unexpected service args %s %+v", gotExpense, got)
		}
	})

	t.Run("returns 400 without expense_id", func(t *testing.T) {
		r := setupGroceryRouter(NewGroceryHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/groceries", `{"name":"Eggs","amount":42}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "Expense_id is required")
	})

	t.Run("returns 400 on bad image url", func(t *testing.T) {
		r := setupGroceryRouter(NewGroceryHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/groceries", `{"expense_id":"exp-2","name":"Eggs","amount":42,"image_url":"nope"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for foreign expense", func(t *testing.T) {
		svc := &mockExpenseService{
			addGroceryItemFn: func(string, string, services.GroceryItemInput) (*models.GroceryItem, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		r := setupGroceryRouter(NewGroceryHandler(svc))

		rec := doRequest(r, "POST", "/groceries", `{"expense_id":"exp-2","name":"Eggs","amount":42}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}
