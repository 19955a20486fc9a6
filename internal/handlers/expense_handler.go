package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tally/internal/events"
	"tally/internal/models"
	"tally/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	publisher      events.Publisher
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, publisher events.Publisher) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, publisher: publisher}
}

// CreateExpenseRequest represents the request payload for creating an expense
type CreateExpenseRequest struct {
	Name            string  `json:"name" binding:"required,max=200"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Currency        string  `json:"currency" binding:"omitempty,iso4217"`
	Description     *string `json:"description" binding:"omitempty,max=1000"`
	Category        *string `json:"category" binding:"omitempty,max=100"`
	PaymentMethod   *string `json:"payment_method" binding:"omitempty,max=100"`
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
	BillingPeriodID *string `json:"billing_period_id" binding:"omitempty,uuid"`
	DueDate         *int64  `json:"due_date" binding:"omitempty,gt=0"`
}

// UpdateExpenseRequest represents a partial expense update
type UpdateExpenseRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Amount        *float64 `json:"amount" binding:"omitempty,gt=0"`
	Currency      *string  `json:"currency" binding:"omitempty,iso4217"`
	Description   *string  `json:"description" binding:"omitempty,max=1000"`
	Category      *string  `json:"category" binding:"omitempty,max=100"`
	PaymentMethod *string  `json:"payment_method" binding:"omitempty,max=100"`
	Notes         *string  `json:"notes" binding:"omitempty,max=2000"`
	Status        *string  `json:"status" binding:"omitempty,expense_status"`
	DueDate       *int64   `json:"due_date" binding:"omitempty,gt=0"`
	PaidDate      *int64   `json:"paid_date" binding:"omitempty,gt=0"`
}

// CreateExpenseItemRequest represents the request payload for adding a line item
type CreateExpenseItemRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// ExpenseListResponse wraps a list of expenses.
type ExpenseListResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

// CreateExpenseResponse is returned after creating an expense.
type CreateExpenseResponse struct {
	Message string         `json:"message"`
	Expense models.Expense `json:"expense"`
}

// CreateExpenseItemResponse is returned after adding a line item.
type CreateExpenseItemResponse struct {
	Message string             `json:"message"`
	Item    models.ExpenseItem `json:"item"`
}

// GetExpenses lists the caller's expenses
// @Summary     List expenses
// @Description List the authenticated user's expenses, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ExpenseListResponse "Expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetExpensesByUserID(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// CreateExpense handles the creation of a new expense
// @Summary     Create an expense
// @Description Create a new expense owned by the authenticated user
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} CreateExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Billing period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, services.CreateExpenseInput{
		Name:            req.Name,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Description:     req.Description,
		Category:        req.Category,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		BillingPeriodID: req.BillingPeriodID,
		DueDate:         req.DueDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	publish(c.Request.Context(), h.publisher, events.ExpenseCreated(expense))

	c.JSON(http.StatusCreated, gin.H{"message": "Expense created successfully", "expense": expense})
}

// GetExpenseByID returns one expense with its items
// @Summary     Get expense by ID
// @Description Get an expense with its line items and grocery items. Unknown ids yield an empty list.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseListResponse "Zero or one expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// UpdateExpense applies a partial update
// @Summary     Update an expense
// @Description Update selected fields of an expense. Marking it paid stamps paid_date when absent.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [patch]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	update := services.ExpenseUpdate{
		Name:          req.Name,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		DueDate:       req.DueDate,
		PaidDate:      req.PaidDate,
	}
	if req.Status != nil {
		status := models.ExpenseStatus(*req.Status)
		update.Status = &status
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, expenseID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense deletes an expense and everything attached to it
// @Summary     Delete an expense
// @Description Delete an expense together with its items, grocery items and favorite marker
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	publish(c.Request.Context(), h.publisher, events.ExpenseDeleted(userID, expenseID))

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// CreateExpenseItem adds a line item to an expense
// @Summary     Add an expense item
// @Description Add a line item to one of the caller's expenses
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Param       request body CreateExpenseItemRequest true "Item details"
// @Success     201 {object} CreateExpenseItemResponse "Item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [post]
func (h *ExpenseHandler) CreateExpenseItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	item, err := h.expenseService.AddExpenseItem(c.Request.Context(), userID, expenseID, req.Name, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Expense item created successfully", "item": item})
}

// DeleteExpenseItem removes a line item
// @Summary     Delete an expense item
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Param       itemId path string true "Item ID"
// @Success     200 {object} MessageResponse "Item deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense or item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/items/{itemId} [delete]
func (h *ExpenseHandler) DeleteExpenseItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpenseItem(c.Request.Context(), userID, expenseID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense item deleted successfully"})
}
