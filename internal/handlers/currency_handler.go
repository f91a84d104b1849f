package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

// CurrencyHandler handles currency and exchange rate requests.
type CurrencyHandler struct {
	currencyService services.CurrencyServicer
	auditService    services.AuditServicer
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyService services.CurrencyServicer, auditService services.AuditServicer) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService, auditService: auditService}
}

// CreateCurrencyRequest represents the request payload for adding a currency.
// ExchangeRate is units of this currency per one unit of the base currency.
type CreateCurrencyRequest struct {
	Code         string          `json:"code" binding:"required,len=3,iso4217"`
	Name         string          `json:"name" binding:"max=100"`
	Symbol       string          `json:"symbol" binding:"max=8"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// ConvertResponse is the result of a conversion.
type ConvertResponse struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Result decimal.Decimal `json:"result"`
}

// ListCurrencies lists the configured currencies.
// @Summary     List currencies
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Currency "Currencies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /currencies [get]
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

// CreateCurrency adds a currency with its rate against the base currency.
// @Summary     Create a currency
// @Tags        currencies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCurrencyRequest true "Currency details"
// @Success     201 {object} models.Currency "Currency created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Currency already exists"
// @Router      /currencies [post]
func (h *CurrencyHandler) CreateCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	currency, err := h.currencyService.CreateCurrency(c.Request.Context(), req.Code, req.Name, req.Symbol, req.ExchangeRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CURRENCY", "currency", currency.ID, c.ClientIP(),
		map[string]interface{}{"code": currency.Code, "exchange_rate": currency.ExchangeRate.String()})

	c.JSON(http.StatusCreated, gin.H{"currency": currency})
}

// Convert converts an amount between two configured currencies.
// @Summary     Convert an amount
// @Description Convert through the base currency using stored rates. The result is rounded to the target currency's minor units.
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Param       amount query string true  "Amount"
// @Param       from   query string true  "Source currency code"
// @Param       to     query string false "Target currency code (defaults to the base currency)"
// @Success     200 {object} ConvertResponse "Conversion"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Currency not found"
// @Failure     422 {object} ErrorResponse "Currency has no usable rate"
// @Router      /currencies/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid amount"))
		return
	}
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	if from == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from is required"))
		return
	}
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))

	var result decimal.Decimal
	if to == "" {
		base, err := h.currencyService.BaseCurrency(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		to = base.Code
		result, err = h.currencyService.ConvertToBaseCurrency(c.Request.Context(), amount, from)
		if err != nil {
			respondWithError(c, err)
			return
		}
	} else {
		result, err = h.currencyService.Convert(c.Request.Context(), amount, from, to)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, ConvertResponse{
		Amount: amount,
		From:   from,
		To:     to,
		Result: ledger.RoundToCurrency(result, to),
	})
}

// UpdateRates refreshes stored rates from the configured providers.
// @Summary     Refresh exchange rates
// @Description Fetch rates from the primary provider, falling back to the secondary. Currencies missing from the response keep their stored rate.
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.RateUpdateSummary "Update summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /currencies/rates [post]
func (h *CurrencyHandler) UpdateRates(c *gin.Context) {
	summary, err := h.currencyService.UpdateExchangeRates(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if userID := c.GetString("userID"); userID != "" {
		h.auditService.Log(userID, "UPDATE_EXCHANGE_RATES", "currency", "", c.ClientIP(),
			map[string]interface{}{"provider": summary.Provider, "updated": summary.Updated, "stale": summary.Stale})
	}

	c.JSON(http.StatusOK, summary)
}
