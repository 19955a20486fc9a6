package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"tally/internal/models"
	"tally/internal/services"
)

type mockUserService struct {
	createOrDontUserFn func(userID, name, email string) (bool, error)
	getUserByIDFn      func(userID string) ([]models.User, error)
}

func (m *mockUserService) CreateOrDontUser(_ context.Context, userID, name, email string) (bool, error) {
	if m.createOrDontUserFn != nil {
		return m.createOrDontUserFn(userID, name, email)
	}
	return true, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, userID string) ([]models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(userID)
	}
	return []models.User{}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/users", handler.CreateUser)
	auth.GET("/users", handler.GetUser)
	return r
}

func TestUserHandler_CreateUser(t *testing.T) {
	t.Run("returns 201 for new and existing users", func(t *testing.T) {
		for _, created := range []bool{true, false} {
			svc := &mockUserService{
				createOrDontUserFn: func(userID, name, email string) (bool, error) {
					if userID != testUserID || name != "Ada" || email != "ada@example.com" {
						t.Errorf("unexpected args %s %s %s", userID, name, email)
					}
					return created, nil
				},
			}
			r := setupUserRouter(NewUserHandler(svc))

			rec := doRequest(r, "POST", "/users", `{"name":"Ada","email":"ada@example.com"}`)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d", rec.Code)
			}
			if parseJSON(t, rec)["message"] != "User created successfully" {
				t.Errorf("unexpected body %s", rec.Body.String())
			}
		}
	})

	t.Run("returns 400 when fields are missing", func(t *testing.T) {
		r := setupUserRouter(NewUserHandler(&mockUserService{}))

		rec := doRequest(r, "POST", "/users", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "Name and email are required")
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Run("returns own user", func(t *testing.T) {
		svc := &mockUserService{
			getUserByIDFn: func(userID string) ([]models.User, error) {
				return []models.User{{Base: models.Base{ID: userID}, Name: "Ada", Email: "ada@example.com"}}, nil
			},
		}
		r := setupUserRouter(NewUserHandler(svc))

		rec := doRequest(r, "GET", "/users?id="+testUserID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		list := parseJSON(t, rec)["result"].([]interface{})
		if len(list) != 1 || list[0].(map[string]interface{})["email"] != "ada@example.com" {
			t.Errorf("unexpected result %v", list)
		}
	})

	t.Run("returns 400 without id", func(t *testing.T) {
		r := setupUserRouter(NewUserHandler(&mockUserService{}))

		rec := doRequest(r, "GET", "/users", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "User ID is required")
	})

	t.Run("returns 404 for another user's id", func(t *testing.T) {
		called := false
		svc := &mockUserService{
			getUserByIDFn: func(string) ([]models.User, error) {
				called = true
				return nil, nil
			},
		}
		r := setupUserRouter(NewUserHandler(svc))

		rec := doRequest(r, "GET", "/users?id=someone-else", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
		if called {
			t.Error("service should not be queried for foreign ids")
		}
	})

	t.Run("returns 404 when row is absent", func(t *testing.T) {
		r := setupUserRouter(NewUserHandler(&mockUserService{}))

		rec := doRequest(r, "GET", "/users?id="+testUserID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestUserHandler_Unauthenticated(t *testing.T) {
	r := gin.New()
	h := NewUserHandler(&mockUserService{})
	r.GET("/users", h.GetUser)

	rec := doRequest(r, "GET", "/users?id=x", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
}
