package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tally/internal/models"
	"tally/internal/services"
)

// GroceryHandler handles grocery item requests.
type GroceryHandler struct {
	expenseService services.ExpenseServicer
}

// NewGroceryHandler creates a new GroceryHandler.
func NewGroceryHandler(expenseService services.ExpenseServicer) *GroceryHandler {
	return &GroceryHandler{expenseService: expenseService}
}

// GroceryItemRequest represents the request payload for a grocery item
type GroceryItemRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Brand       *string `json:"brand" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url"`
}

// CreateGroceryRequest names the parent expense in the body.
type CreateGroceryRequest struct {
	ExpenseID string `json:"expense_id" binding:"required"`
	GroceryItemRequest
}

// CreateGroceryItemResponse is returned after adding a grocery item.
type CreateGroceryItemResponse struct {
	Message string             `json:"message"`
	Item    models.GroceryItem `json:"item"`
}

// CreateExpenseGrocery adds a grocery item to the expense in the path
// @Summary     Add a grocery item
// @Tags        groceries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Param       request body GroceryItemRequest true "Grocery item"
// @Success     201 {object} CreateGroceryItemResponse "Grocery item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/groceries [post]
func (h *GroceryHandler) CreateExpenseGrocery(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GroceryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	h.create(c, expenseID, req)
}

// CreateGrocery adds a grocery item to the expense named in the body
// @Summary     Add a grocery item
// @Tags        groceries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGroceryRequest true "Grocery item with its expense"
// @Success     201 {object} CreateGroceryItemResponse "Grocery item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groceries [post]
func (h *GroceryHandler) CreateGrocery(c *gin.Context) {
	var req CreateGroceryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	h.create(c, req.ExpenseID, req.GroceryItemRequest)
}

func (h *GroceryHandler) create(c *gin.Context, expenseID string, req GroceryItemRequest) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.expenseService.AddGroceryItem(c.Request.Context(), userID, expenseID, services.GroceryItemInput{
		Name:        req.Name,
		Amount:      req.Amount,
		Brand:       req.Brand,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Grocery item created successfully", "item": item})
}
