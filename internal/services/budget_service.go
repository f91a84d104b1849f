package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	store *repository.Store
	locks *keyedMutex
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(store *repository.Store) BudgetServicer {
	return &budgetService{store: store, locks: newKeyedMutex()}
}

// yearRange returns the first and last instant of year in UTC.
func yearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// RecomputeBudgetBalance sets current balance = starting balance + the net
// base-currency contribution of the category's transactions in the year.
// Reimbursements, incoming account transfers and inter-account tagged rows
// do not count.
func (s *budgetService) RecomputeBudgetBalance(ctx context.Context, userID, categoryID string, year int) (*models.Budget, error) {
	unlock := s.locks.Lock(fmt.Sprintf("%s/%s/%d", userID, categoryID, year))
	defer unlock()

	budget, err := s.store.Budgets.Find(ctx, userID, categoryID, year)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	base, err := s.store.Currencies.FindBase(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrBaseCurrencyNotConfigured
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	from, to := yearRange(year)
	txs, err := s.store.Transactions.ListByCategoryInRange(ctx, userID, categoryID, from, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	net := decimal.Zero
	for i := range txs {
		tx := &txs[i]
		class := ledger.Classify(tx.TypeName(), tx.ExpenseTag())
		if !class.IncludeInBudget {
			continue
		}
		amount := tx.Amount
		if tx.Currency != nil {
			amount, err = ledger.Convert(tx.Amount, tx.Currency, base)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInvalidExchangeRate, err)
			}
		}
		net = net.Add(amount.Mul(decimal.NewFromInt(int64(class.LedgerSign))))
	}

	current := ledger.RoundToCurrency(budget.StartingBalance.Add(net), base.Code)
	if err := s.store.Budgets.UpdateCurrentBalance(ctx, budget.ID, current); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.CurrentBalance = current
	return budget, nil
}

// RecomputeUserBudgets recomputes every budget the user has for year.
func (s *budgetService) RecomputeUserBudgets(ctx context.Context, userID string, year int) ([]models.Budget, error) {
	budgets, err := s.store.Budgets.ListByUser(ctx, userID, &year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make([]models.Budget, 0, len(budgets))
	for _, b := range budgets {
		updated, err := s.RecomputeBudgetBalance(ctx, userID, b.CategoryID, b.Year)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			out = append(out, *updated)
		}
	}
	return out, nil
}

// CreateBudget creates a budget and immediately reconciles it against any
// transactions already filed under the category that year.
func (s *budgetService) CreateBudget(ctx context.Context, userID, categoryID string, year int, startingBalance decimal.Decimal) (*models.Budget, error) {
	if year < 1900 || year > 9999 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "year is out of range")
	}
	if _, err := s.store.Lookups.CategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if _, err := s.store.Budgets.Find(ctx, userID, categoryID, year); err == nil {
		return nil, apperrors.ErrDuplicateBudget
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		UserID:          userID,
		CategoryID:      categoryID,
		Year:            year,
		StartingBalance: startingBalance,
		AllocatedAmount: startingBalance,
		CurrentBalance:  startingBalance,
	}
	if err := s.store.Budgets.Create(ctx, budget); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.RecomputeBudgetBalance(ctx, userID, categoryID, year)
}

// GetUserBudgets lists a user's budgets, optionally for one year.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID string, year *int) ([]models.Budget, error) {
	budgets, err := s.store.Budgets.ListByUser(ctx, userID, year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}
