package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/pagination"
	"tally/internal/services"
)

// BillingPeriodHandler handles billing period requests.
type BillingPeriodHandler struct {
	billingPeriodService services.BillingPeriodServicer
}

// NewBillingPeriodHandler creates a new BillingPeriodHandler.
func NewBillingPeriodHandler(billingPeriodService services.BillingPeriodServicer) *BillingPeriodHandler {
	return &BillingPeriodHandler{billingPeriodService: billingPeriodService}
}

// CreateBillingPeriodRequest represents the request payload for a billing period.
// Dates are Unix epoch milliseconds.
type CreateBillingPeriodRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartDate int64  `json:"start_date" binding:"required,gt=0"`
	EndDate   int64  `json:"end_date" binding:"required,gt=0"`
	IsActive  *bool  `json:"is_active"`
}

// CreateBillingPeriod creates a billing period
// @Summary     Create a billing period
// @Tags        billing-periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBillingPeriodRequest true "Billing period"
// @Success     201 {object} models.BillingPeriod "Billing period created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /billing-periods [post]
func (h *BillingPeriodHandler) CreateBillingPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBillingPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	period, err := h.billingPeriodService.CreateBillingPeriod(c.Request.Context(), userID, req.Name, req.StartDate, req.EndDate, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"billing_period": period})
}

// GetBillingPeriods lists billing periods
// @Summary     List billing periods
// @Tags        billing-periods
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       is_active query bool false "Filter by active flag"
// @Success     200 {object} pagination.PageResponse[models.BillingPeriod] "Billing periods"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /billing-periods [get]
func (h *BillingPeriodHandler) GetBillingPeriods(c *gin.Context) {
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

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "is_active must be true or false"))
			return
		}
		isActive = &v
	}

	result, err := h.billingPeriodService.GetUserBillingPeriods(c.Request.Context(), userID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteBillingPeriod deletes a billing period and its expenses
// @Summary     Delete a billing period
// @Tags        billing-periods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Billing period ID"
// @Success     200 {object} MessageResponse "Billing period deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Billing period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /billing-periods/{id} [delete]
func (h *BillingPeriodHandler) DeleteBillingPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	periodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.billingPeriodService.DeleteBillingPeriod(c.Request.Context(), userID, periodID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Billing period deleted successfully"})
}
