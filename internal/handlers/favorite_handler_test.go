package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/services"
)

type mockFavoriteService struct {
	addFn    func(userID, expenseID string) (*models.FavoriteExpense, error)
	removeFn func(userID, expenseID string) error
	listFn   func(userID string) ([]models.Expense, error)
}

func (m *mockFavoriteService) AddFavorite(_ context.Context, userID, expenseID string) (*models.FavoriteExpense, error) {
	if m.addFn != nil {
		return m.addFn(userID, expenseID)
	}
	return &models.FavoriteExpense{ID: "fav-1", ExpenseID: expenseID}, nil
}

func (m *mockFavoriteService) RemoveFavorite(_ context.Context, userID, expenseID string) error {
	if m.removeFn != nil {
		return m.removeFn(userID, expenseID)
	}
	return nil
}

func (m *mockFavoriteService) ListFavorites(_ context.Context, userID string) ([]models.Expense, error) {
	if m.listFn != nil {
		return m.listFn(userID)
	}
	return []models.Expense{}, nil
}

var _ services.FavoriteServicer = (*mockFavoriteService)(nil)

func setupFavoriteRouter(handler *FavoriteHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/favorites", handler.ListFavorites)
	auth.POST("/expenses/:id/favorite", handler.AddFavorite)
	auth.DELETE("/expenses/:id/favorite", handler.RemoveFavorite)
	return r
}

func TestFavoriteHandler_AddFavorite(t *testing.T) {
	r := setupFavoriteRouter(NewFavoriteHandler(&mockFavoriteService{}))

	rec := doRequest(r, "POST", "/expenses/exp-1/favorite", "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	fav := parseJSON(t, rec)["favorite"].(map[string]interface{})
	if fav["expense_id"] != "exp-1" {
		t.Errorf("unexpected favorite %v", fav)
	}
}

func TestFavoriteHandler_RemoveFavorite(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupFavoriteRouter(NewFavoriteHandler(&mockFavoriteService{}))

		rec := doRequest(r, "DELETE", "/expenses/exp-1/favorite", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not a favorite", func(t *testing.T) {
		svc := &mockFavoriteService{removeFn: func(string, string) error { return apperrors.ErrFavoriteNotFound }}
		r := setupFavoriteRouter(NewFavoriteHandler(svc))

		rec := doRequest(r, "DELETE", "/expenses/exp-1/favorite", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "FAVORITE_NOT_FOUND")
	})
}

func TestFavoriteHandler_ListFavorites(t *testing.T) {
	svc := &mockFavoriteService{
		listFn: func(userID string) ([]models.Expense, error) {
			return []models.Expense{{Base: models.Base{ID: "exp-1"}, UserID: userID}}, nil
		},
	}
	r := setupFavoriteRouter(NewFavoriteHandler(svc))

	rec := doRequest(r, "GET", "/favorites", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if list := parseJSON(t, rec)["expenses"].([]interface{}); len(list) != 1 {
		t.Errorf("expected 1 favorite, got %d", len(list))
	}
}
