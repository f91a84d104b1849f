package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

// LookupHandler serves the shared reference data.
type LookupHandler struct {
	lookupService services.LookupServicer
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookupService services.LookupServicer) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// ListCategories lists budget categories
// @Summary     List budget categories
// @Tags        reference
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.BudgetCategory "Categories"
// @Router      /categories [get]
func (h *LookupHandler) ListCategories(c *gin.Context) {
	categories, err := h.lookupService.ListCategories(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListExpenseTypes lists expense tags
// @Summary     List expense types
// @Tags        reference
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.ExpenseType "Expense types"
// @Router      /expense-types [get]
func (h *LookupHandler) ListExpenseTypes(c *gin.Context) {
	tags, err := h.lookupService.ListExpenseTypes(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense_types": tags})
}
