package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tally/internal/services"
)

// FavoriteHandler handles favorite expense requests.
type FavoriteHandler struct {
	favoriteService services.FavoriteServicer
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService services.FavoriteServicer) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// AddFavorite marks an expense as a favorite
// @Summary     Favorite an expense
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     201 {object} models.FavoriteExpense "Favorite"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/favorite [post]
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
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

	favorite, err := h.favoriteService.AddFavorite(c.Request.Context(), userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"favorite": favorite})
}

// RemoveFavorite clears the favorite marker
// @Summary     Unfavorite an expense
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Favorite removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense or favorite not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/favorite [delete]
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
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

	if err := h.favoriteService.RemoveFavorite(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed successfully"})
}

// ListFavorites lists the caller's favorite expenses
// @Summary     List favorite expenses
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ExpenseListResponse "Favorite expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.favoriteService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}
