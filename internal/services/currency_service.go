package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/exchange"
	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/logger"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// staleRateAge is how old a stored rate may get before conversions warn.
const staleRateAge = 48 * time.Hour

// currencyService handles currencies, conversion and rate refreshes.
type currencyService struct {
	store   *repository.Store
	fetcher *exchange.Fetcher
	now     func() time.Time
}

// NewCurrencyService creates a new CurrencyServicer. fetcher may be nil when
// rate refreshes are not needed.
func NewCurrencyService(store *repository.Store, fetcher *exchange.Fetcher) CurrencyServicer {
	if fetcher == nil {
		fetcher = exchange.NewFetcher()
	}
	return &currencyService{store: store, fetcher: fetcher, now: time.Now}
}

func (s *currencyService) findCurrency(ctx context.Context, code string) (*models.Currency, error) {
	c, err := s.store.Currencies.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrCurrencyNotFound, "currency "+strings.ToUpper(code)+" not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return c, nil
}

// BaseCurrency returns the configured base currency.
func (s *currencyService) BaseCurrency(ctx context.Context) (*models.Currency, error) {
	base, err := s.store.Currencies.FindBase(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrBaseCurrencyNotConfigured
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return base, nil
}

// Convert converts amount between two stored currencies.
func (s *currencyService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if strings.EqualFold(fromCode, toCode) {
		return amount, nil
	}
	from, err := s.findCurrency(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := s.findCurrency(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return s.convert(amount, from, to)
}

// ConvertToBaseCurrency converts amount from code into the base currency.
func (s *currencyService) ConvertToBaseCurrency(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	base, err := s.BaseCurrency(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.EqualFold(code, base.Code) {
		return amount, nil
	}
	from, err := s.findCurrency(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return s.convert(amount, from, base)
}

func (s *currencyService) convert(amount decimal.Decimal, from, to *models.Currency) (decimal.Decimal, error) {
	for _, c := range []*models.Currency{from, to} {
		if !c.IsBase && c.RateUpdatedAt != nil && s.now().Sub(*c.RateUpdatedAt) > staleRateAge {
			logger.Get().Warnw("converting with a stale exchange rate",
				"currency", c.Code,
				"rate_updated_at", c.RateUpdatedAt,
			)
		}
	}

	out, err := ledger.Convert(amount, from, to)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInvalidExchangeRate, err)
	}
	return out, nil
}

// FetchExchangeRates asks the primary provider, then the secondary. When
// both fail it logs the failure and returns nil.
func (s *currencyService) FetchExchangeRates(ctx context.Context, baseCode string) *exchange.RateSet {
	set, err := s.fetcher.Fetch(ctx, baseCode)
	if err != nil {
		logger.Get().Errorw("failed to fetch exchange rates from every provider",
			"base", baseCode,
			"error", err,
		)
		return nil
	}
	return set
}

// UpdateExchangeRates refreshes every non-base currency from the providers.
// Currencies missing from the fetched set keep their stored rate.
func (s *currencyService) UpdateExchangeRates(ctx context.Context) (*RateUpdateSummary, error) {
	base, err := s.BaseCurrency(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RateUpdateSummary{Base: base.Code, Updated: []string{}, Missing: []string{}}

	set := s.FetchExchangeRates(ctx, base.Code)
	if set == nil {
		logger.Get().Warnw("no exchange rates fetched, keeping stored rates", "base", base.Code)
		summary.Stale = true
		return summary, nil
	}
	summary.Provider = set.Provider

	currencies, err := s.store.Currencies.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, c := range currencies {
		if c.IsBase {
			continue
		}
		rate, ok := set.Rates[strings.ToUpper(c.Code)]
		if !ok {
			logger.Get().Warnw("exchange rate missing from provider response",
				"currency", c.Code,
				"provider", set.Provider,
			)
			summary.Missing = append(summary.Missing, c.Code)
			continue
		}
		if err := s.store.Currencies.UpdateRate(ctx, c.ID, rate, set.FetchedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		summary.Updated = append(summary.Updated, c.Code)
	}

	return summary, nil
}

// CreateCurrency registers a non-base currency. An empty symbol defaults to
// the ISO symbol.
func (s *currencyService) CreateCurrency(ctx context.Context, code, name, symbol string, rate decimal.Decimal) (*models.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ledger.IsKnownCurrency(code) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown ISO 4217 code "+code)
	}
	if !rate.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "exchange rate must be greater than zero")
	}

	if _, err := s.store.Currencies.FindByCode(ctx, code); err == nil {
		return nil, apperrors.ErrDuplicateCurrency
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if symbol == "" {
		symbol = ledger.CurrencySymbol(code)
	}
	if name == "" {
		name = code
	}
	now := s.now().UTC()
	currency := &models.Currency{
		Code:          code,
		Name:          name,
		Symbol:        symbol,
		ExchangeRate:  rate,
		RateUpdatedAt: &now,
	}
	if err := s.store.Currencies.Create(ctx, currency); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currency, nil
}

// ListCurrencies returns every stored currency.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	currencies, err := s.store.Currencies.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currencies, nil
}
