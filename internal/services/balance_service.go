package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/logger"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// balanceService recomputes account balances.
type balanceService struct {
	store *repository.Store
	locks *keyedMutex
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(store *repository.Store) BalanceServicer {
	return &balanceService{store: store, locks: newKeyedMutex()}
}

// RecomputeAccountBalance rewrites the account balance and returns it.
func (s *balanceService) RecomputeAccountBalance(ctx context.Context, userID, accountID string) (decimal.Decimal, error) {
	result, err := s.RecalculateAccountBalance(ctx, userID, accountID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return result.CalculatedBalance, nil
}

// RecalculateAccountBalance sets balance = initial + Σ sign·amount.
//
// Without an explicit initial balance, an account that has a non-zero
// balance, transactions, and no usable initial balance gets one inferred as
// balance − Σ sign·amount so that the stored balance is preserved. Persisting
// the inferred value is best effort; a failure is reported in the result's
// Warning.
func (s *balanceService) RecalculateAccountBalance(ctx context.Context, userID, accountID string, initial *decimal.Decimal) (*BalanceResult, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := findOwnedAccount(ctx, s.store, userID, accountID)
	if err != nil {
		return nil, err
	}

	sum, count, err := s.signedSum(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	result := &BalanceResult{Account: account, TransactionCount: count}

	if initial != nil {
		result.InitialBalance = *initial
		result.CalculatedBalance = initial.Add(sum)
		if err := s.store.Accounts.UpdateBalances(ctx, account.ID, *initial, result.CalculatedBalance); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		account.InitialBalance = decimal.NewNullDecimal(*initial)
		account.Balance = result.CalculatedBalance
		return result, nil
	}

	start := decimal.Zero
	if account.InitialBalance.Valid {
		start = account.InitialBalance.Decimal
	}
	if start.IsZero() && !account.Balance.IsZero() && count > 0 {
		start = account.Balance.Sub(sum)
		result.InitialBalanceInferred = true

		if err := s.store.Accounts.UpdateInitialBalance(ctx, account.ID, start); err != nil {
			result.Warning = fmt.Sprintf("inferred initial balance %s could not be saved: %v", start, err)
			logger.Get().Warnw("failed to persist inferred initial balance",
				"account_id", account.ID,
				"initial_balance", start.String(),
				"error", err,
			)
		} else {
			account.InitialBalance = decimal.NewNullDecimal(start)
		}
	}

	result.InitialBalance = start
	result.CalculatedBalance = start.Add(sum)
	if err := s.store.Accounts.UpdateBalance(ctx, account.ID, result.CalculatedBalance); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance = result.CalculatedBalance
	return result, nil
}

// RebaseAccountBalance rewrites only the balance column from start and the
// signed transaction sum.
func (s *balanceService) RebaseAccountBalance(ctx context.Context, userID, accountID string, start decimal.Decimal) (*BalanceResult, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := findOwnedAccount(ctx, s.store, userID, accountID)
	if err != nil {
		return nil, err
	}

	sum, count, err := s.signedSum(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	result := &BalanceResult{
		Account:           account,
		InitialBalance:    start,
		CalculatedBalance: start.Add(sum),
		TransactionCount:  count,
	}
	if err := s.store.Accounts.UpdateBalance(ctx, account.ID, result.CalculatedBalance); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance = result.CalculatedBalance
	return result, nil
}

func (s *balanceService) signedSum(ctx context.Context, accountID string) (decimal.Decimal, int, error) {
	txs, err := s.store.Transactions.ListByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(ledger.SignedAmount(txs[i].TypeName(), txs[i].Amount))
	}
	return sum, len(txs), nil
}
