package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	CategoryID      string          `json:"category_id" binding:"required,uuid"`
	Year            int             `json:"year" binding:"required,min=1900,max=9999"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

// RecomputeBudgetsRequest selects the year to recompute; zero means the
// current year.
type RecomputeBudgetsRequest struct {
	Year int `json:"year" binding:"omitempty,min=1900,max=9999"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a yearly budget for a category. Its current balance is computed immediately from existing transactions.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Budget already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), userID, req.CategoryID, req.Year, req.StartingBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category_id": req.CategoryID, "year": req.Year, "starting_balance": req.StartingBalance.String()})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetUserBudgets handles the retrieval of the user's budgets.
// @Summary     Get user budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Filter by year"
// @Success     200 {array}  models.Budget "Budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [get]
func (h *BudgetHandler) GetUserBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var year *int
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year"))
			return
		}
		year = &y
	}

	budgets, err := h.budgetService.GetUserBudgets(c.Request.Context(), userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// RecomputeBudgets rebuilds every budget balance of a year.
// @Summary     Recompute budgets
// @Description Recompute the current balance of each of the user's budgets for a year from its transactions
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecomputeBudgetsRequest false "Year (defaults to the current year)"
// @Success     200 {array}  models.Budget "Recomputed budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/recompute [post]
func (h *BudgetHandler) RecomputeBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecomputeBudgetsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	if req.Year == 0 {
		req.Year = time.Now().UTC().Year()
	}

	budgets, err := h.budgetService.RecomputeUserBudgets(c.Request.Context(), userID, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECOMPUTE_BUDGETS", "budget", "", c.ClientIP(),
		map[string]interface{}{"year": req.Year, "count": len(budgets)})

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}
