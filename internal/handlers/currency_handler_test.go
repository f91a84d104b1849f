package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

func setupCurrencyRouter(handler *CurrencyHandler, userID string) *gin.Engine {
	r := gin.New()
	r.GET("/currencies", handler.ListCurrencies)
	r.GET("/currencies/convert", handler.Convert)
	r.POST("/internal/rates", handler.UpdateRates)
	auth := r.Group("", injectUserID(userID))
	auth.POST("/currencies", handler.CreateCurrency)
	auth.POST("/currencies/rates", handler.UpdateRates)
	return r
}

func TestCurrencyHandler_ListCurrencies(t *testing.T) {
	svc := &mockCurrencyService{
		listFn: func() ([]models.Currency, error) {
			return []models.Currency{{Code: "MXN", IsBase: true}, {Code: "USD"}}, nil
		},
	}
	r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}), testUserID)

	rec := doRequest(r, http.MethodGet, "/currencies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, parseJSON(t, rec)["currencies"], 2)
}

func TestCurrencyHandler_CreateCurrency(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &mockCurrencyService{
			createCurrencyFn: func(code, name, symbol string, rate decimal.Decimal) (*models.Currency, error) {
				return &models.Currency{Code: code, Name: name, Symbol: symbol, ExchangeRate: rate}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, audit), testUserID)

		rec := doRequest(r, http.MethodPost, "/currencies", `{"code":"JPY","name":"Yen","symbol":"¥","exchange_rate":"8.5"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, []string{"CREATE_CURRENCY"}, audit.actions())
	})

	t.Run("rejects_invalid_codes", func(t *testing.T) {
		r := setupCurrencyRouter(NewCurrencyHandler(&mockCurrencyService{}, &mockAuditService{}), testUserID)

		for _, code := range []string{"jpy", "YENS", "QQQ"} {
			rec := doRequest(r, http.MethodPost, "/currencies", `{"code":"`+code+`","exchange_rate":"1"}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code, code)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		svc := &mockCurrencyService{
			createCurrencyFn: func(string, string, string, decimal.Decimal) (*models.Currency, error) {
				return nil, apperrors.ErrDuplicateCurrency
			},
		}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}), testUserID)

		rec := doRequest(r, http.MethodPost, "/currencies", `{"code":"USD","exchange_rate":"0.05"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCurrencyHandler_Convert(t *testing.T) {
	t.Run("explicit_target", func(t *testing.T) {
		var from, to string
		svc := &mockCurrencyService{
			convertFn: func(amount decimal.Decimal, f, tgt string) (decimal.Decimal, error) {
				from, to = f, tgt
				return decimal.RequireFromString("999.996"), nil
			},
		}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}), testUserID)

		rec := doRequest(r, http.MethodGet, "/currencies/convert?amount=6.7&from=usd&to=jpy", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "USD", from)
		assert.Equal(t, "JPY", to)

		body := parseJSON(t, rec)
		assert.Equal(t, "1000", body["result"])
		assert.Equal(t, "JPY", body["to"])
	})

	t.Run("defaults_to_base", func(t *testing.T) {
		svc := &mockCurrencyService{
			convertToBaseFn: func(amount decimal.Decimal, code string) (decimal.Decimal, error) {
				return amount.Mul(decimal.NewFromInt(20)), nil
			},
		}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}), testUserID)

		rec := doRequest(r, http.MethodGet, "/currencies/convert?amount=10&from=USD", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := parseJSON(t, rec)
		assert.Equal(t, "MXN", body["to"])
		assert.Equal(t, "200", body["result"])
	})

	t.Run("bad_input", func(t *testing.T) {
		r := setupCurrencyRouter(NewCurrencyHandler(&mockCurrencyService{}, &mockAuditService{}), testUserID)

		for _, q := range []string{"amount=abc&from=USD", "amount=1"} {
			rec := doRequest(r, http.MethodGet, "/currencies/convert?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})

	t.Run("unknown_currency", func(t *testing.T) {
		svc := &mockCurrencyService{
			convertFn: func(decimal.Decimal, string, string) (decimal.Decimal, error) {
				return decimal.Zero, apperrors.ErrCurrencyNotFound
			},
		}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}), testUserID)

		rec := doRequest(r, http.MethodGet, "/currencies/convert?amount=1&from=USD&to=GBP", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assertErrorCode(t, parseJSON(t, rec), "CURRENCY_NOT_FOUND")
	})
}

func TestCurrencyHandler_UpdateRates(t *testing.T) {
	svc := &mockCurrencyService{
		updateRatesFn: func() (*services.RateUpdateSummary, error) {
			return &services.RateUpdateSummary{Base: "MXN", Provider: "primary", Updated: []string{"USD"}}, nil
		},
	}

	t.Run("user_refresh_is_audited", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, audit), testUserID)

		rec := doRequest(r, http.MethodPost, "/currencies/rates", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "primary", parseJSON(t, rec)["provider"])
		assert.Equal(t, []string{"UPDATE_EXCHANGE_RATES"}, audit.actions())
	})

	t.Run("internal_refresh_is_not_audited", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, audit), testUserID)

		rec := doRequest(r, http.MethodPost, "/internal/rates", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, audit.actions())
	})
}
