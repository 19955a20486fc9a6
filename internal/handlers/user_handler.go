package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/services"
)

// UserHandler handles user requests.
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the request payload for registering the caller
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email"`
}

// UserListResponse wraps the user lookup result.
type UserListResponse struct {
	Result []models.User `json:"result"`
}

// CreateUser creates the caller's user row unless it already exists
// @Summary     Create user
// @Description Create the authenticated user's profile. Repeated calls are no-ops.
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "Profile"
// @Success     201 {object} MessageResponse "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if _, err := h.userService.CreateOrDontUser(c.Request.Context(), userID, req.Name, req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
}

// GetUser returns the caller's user row
// @Summary     Get user
// @Description Look up a user by id. Only the caller's own id resolves.
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id query string true "User ID"
// @Success     200 {object} UserListResponse "User"
// @Failure     400 {object} ErrorResponse "Missing id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Query("id")
	if id == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "User ID is required"))
		return
	}
	if id != userID {
		respondWithError(c, apperrors.ErrUserNotFound)
		return
	}

	users, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if len(users) == 0 {
		respondWithError(c, apperrors.ErrUserNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": users})
}
