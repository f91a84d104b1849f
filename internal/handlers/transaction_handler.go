package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest represents the request payload for creating or
// replacing a transaction
type TransactionRequest struct {
	AccountID       string          `json:"account_id" binding:"required,uuid"`
	Type            string          `json:"type" binding:"required,transaction_type"`
	CategoryID      string          `json:"category_id" binding:"omitempty,uuid"`
	ExpenseTypeID   *string         `json:"expense_type_id" binding:"omitempty,uuid"`
	Currency        string          `json:"currency" binding:"omitempty,iso4217"`
	Amount          decimal.Decimal `json:"amount"`
	Date            *string         `json:"date"`
	Description     string          `json:"description" binding:"max=500"`
	Notes           string          `json:"notes" binding:"max=1000"`
	IsReimbursable  bool            `json:"is_reimbursable"`
	ReimbursementID *string         `json:"reimbursement_id" binding:"omitempty,max=64"`
}

func (r *TransactionRequest) toInput() (services.TransactionInput, error) {
	input := services.TransactionInput{
		AccountID:       r.AccountID,
		Type:            r.Type,
		CategoryID:      r.CategoryID,
		ExpenseTypeID:   r.ExpenseTypeID,
		CurrencyCode:    r.Currency,
		Amount:          r.Amount,
		Description:     r.Description,
		Notes:           r.Notes,
		IsReimbursable:  r.IsReimbursable,
		ReimbursementID: r.ReimbursementID,
	}
	if r.Date != nil && *r.Date != "" {
		date, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return input, err
		}
		input.Date = date
	}
	return input, nil
}

func (h *TransactionHandler) bindRequest(c *gin.Context) (services.TransactionInput, error) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.TransactionInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if !req.Amount.IsPositive() {
		return services.TransactionInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	return req.toInput()
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a transaction and reconcile the affected account and budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account, category or currency not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := h.bindRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"account_id": tx.AccountID, "type": input.Type, "amount": input.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetUserTransactions handles the retrieval of all transactions for the authenticated user
// @Summary     Get user transactions
// @Description Get a paginated list of the user's transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       account_id  query string false "Filter by account ID"
// @Param       category_id query string false "Filter by budget category ID"
// @Param       type        query string false "Filter by transaction type (INCOME, EXPENSE, TRANSFER, REIMBURSEMENT, ACCOUNT_TRANSFER_IN)"
// @Param       from_date   query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date     query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (repository.TransactionFilter, error) {
	var filter repository.TransactionFilter
	var err error

	if filter.AccountID, err = optionalQueryID(c, "account_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = optionalQueryID(c, "category_id"); err != nil {
		return filter, err
	}

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		name := strings.ToUpper(v)
		valid := false
		for _, known := range models.TransactionTypeNames {
			if name == known {
				valid = true
				break
			}
		}
		if !valid {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type")
		}
		filter.Type = &name
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction handles replacing a transaction
// @Summary     Update a transaction
// @Description Replace a transaction and reconcile both the old and new account and budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := h.bindRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"account_id": tx.AccountID, "type": input.Type, "amount": input.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete a transaction
// @Description Soft-delete a transaction and reconcile its account and budget
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
