package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// accountService handles account-related business logic.
type accountService struct {
	store *repository.Store
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(store *repository.Store) AccountServicer {
	return &accountService{store: store}
}

// CreateAccount creates an account whose balance starts at its initial balance.
func (s *accountService) CreateAccount(ctx context.Context, userID string, input AccountInput) (*models.Account, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if input.Type == "" {
		input.Type = models.AccountTypeChecking
	}

	var currency *models.Currency
	var err error
	if input.CurrencyCode == "" {
		currency, err = s.store.Currencies.FindBase(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrBaseCurrencyNotConfigured
		}
	} else {
		currency, err = s.store.Currencies.FindByCode(ctx, input.CurrencyCode)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account := &models.Account{
		UserID:         userID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Description:    input.Description,
		Balance:        input.InitialBalance,
		InitialBalance: decimal.NewNullDecimal(input.InitialBalance),
		CurrencyID:     currency.ID,
		IsActive:       true,
	}
	if err := s.store.Accounts.Create(ctx, account); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Currency = currency
	return account, nil
}

// GetUserAccounts retrieves a paginated list of a user's active accounts.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	accounts, total, err := s.store.Accounts.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, total)
	return &result, nil
}

// GetAccountByID retrieves an account owned by the user.
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error) {
	return findOwnedAccount(ctx, s.store, userID, accountID)
}

func findOwnedAccount(ctx context.Context, store *repository.Store, userID, accountID string) (*models.Account, error) {
	account, err := store.Accounts.FindOwned(ctx, userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}
