package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tally/internal/models"
	"tally/internal/pagination"
	"tally/internal/services"
)

// RecurringExpenseHandler handles recurring expense template requests.
type RecurringExpenseHandler struct {
	recurringService services.RecurringExpenseServicer
}

// NewRecurringExpenseHandler creates a new RecurringExpenseHandler.
func NewRecurringExpenseHandler(recurringService services.RecurringExpenseServicer) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{recurringService: recurringService}
}

// RecurringItemRequest is a line item of a recurring template.
type RecurringItemRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// CreateRecurringExpenseRequest represents the request payload for a recurring template
type CreateRecurringExpenseRequest struct {
	Name               string                 `json:"name" binding:"required,max=200"`
	Amount             float64                `json:"amount" binding:"required,gt=0"`
	Currency           string                 `json:"currency" binding:"omitempty,iso4217"`
	Description        *string                `json:"description" binding:"omitempty,max=1000"`
	Category           *string                `json:"category" binding:"omitempty,max=100"`
	PaymentMethod      *string                `json:"payment_method" binding:"omitempty,max=100"`
	Notes              *string                `json:"notes" binding:"omitempty,max=2000"`
	RecurrenceType     string                 `json:"recurrence_type" binding:"required,recurrence_type"`
	RecurrenceInterval int                    `json:"recurrence_interval" binding:"omitempty,min=1,max=365"`
	DayOfRecurrence    *int                   `json:"day_of_recurrence" binding:"omitempty,day_of_month"`
	Items              []RecurringItemRequest `json:"items" binding:"omitempty,dive"`
}

// CreateRecurringExpense creates a recurring template with its items
// @Summary     Create a recurring expense
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringExpenseRequest true "Recurring expense"
// @Success     201 {object} models.RecurringExpense "Recurring expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses [post]
func (h *RecurringExpenseHandler) CreateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	items := make([]services.RecurringItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = services.RecurringItemInput{Name: item.Name, Amount: item.Amount, Description: item.Description}
	}

	template, err := h.recurringService.CreateRecurringExpense(c.Request.Context(), userID, services.CreateRecurringExpenseInput{
		Name:               req.Name,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        req.Description,
		Category:           req.Category,
		PaymentMethod:      req.PaymentMethod,
		Notes:              req.Notes,
		RecurrenceType:     models.RecurrenceType(req.RecurrenceType),
		RecurrenceInterval: req.RecurrenceInterval,
		DayOfRecurrence:    req.DayOfRecurrence,
		Items:              items,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_expense": template})
}

// GetRecurringExpenses lists recurring templates
// @Summary     List recurring expenses
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.RecurringExpense] "Recurring expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses [get]
func (h *RecurringExpenseHandler) GetRecurringExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.recurringService.GetUserRecurringExpenses(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecurringExpenseByID returns a template with its items
// @Summary     Get recurring expense
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Success     200 {object} models.RecurringExpense "Recurring expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/{id} [get]
func (h *RecurringExpenseHandler) GetRecurringExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	template, err := h.recurringService.GetRecurringExpenseByID(c.Request.Context(), userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": template})
}

// DeleteRecurringExpense deletes a template
// @Summary     Delete recurring expense
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Success     200 {object} MessageResponse "Recurring expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/{id} [delete]
func (h *RecurringExpenseHandler) DeleteRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringExpense(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}
