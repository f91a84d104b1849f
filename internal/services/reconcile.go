package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// budgetKey identifies one budget of a user.
type budgetKey struct {
	CategoryID string
	Year       int
}

// settledAccount is the starting point pinned for one account.
type settledAccount struct {
	initial decimal.Decimal
	// unsaved is set when the initial balance was inferred but could not be
	// stored; only the balance column is rewritten for such accounts.
	unsaved bool
}

// reconciler re-derives account and budget balances after the transaction
// set changes.
//
// Accounts are settled before the change: a recompute against the unchanged
// set backfills a missing initial balance while balance and transactions
// still agree. The settled initial balance is then pinned for the recompute
// after the change, so removing or adding rows is never mistaken for a
// missing initial balance. An inferred value that failed to save is still
// pinned from memory.
type reconciler struct {
	balances BalanceServicer
	budgets  BudgetServicer
}

// settle recomputes each account and returns the initial balance to pin.
func (r *reconciler) settle(ctx context.Context, userID string, accountIDs ...string) (map[string]settledAccount, error) {
	pinned := make(map[string]settledAccount, len(accountIDs))
	for _, id := range accountIDs {
		if _, seen := pinned[id]; seen {
			continue
		}
		res, err := r.balances.RecalculateAccountBalance(ctx, userID, id, nil)
		if err != nil {
			return nil, err
		}
		pinned[id] = settledAccount{initial: res.InitialBalance, unsaved: res.Warning != ""}
	}
	return pinned, nil
}

// reconcile recomputes every settled account and every listed budget. It
// keeps going after a failure and returns all failures joined.
func (r *reconciler) reconcile(ctx context.Context, userID string, pinned map[string]settledAccount, budgets []budgetKey) error {
	var errs []error
	for id, settled := range pinned {
		var err error
		if settled.unsaved {
			_, err = r.balances.RebaseAccountBalance(ctx, userID, id, settled.initial)
		} else {
			initial := settled.initial
			_, err = r.balances.RecalculateAccountBalance(ctx, userID, id, &initial)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	seen := make(map[budgetKey]bool, len(budgets))
	for _, key := range budgets {
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := r.budgets.RecomputeBudgetBalance(ctx, userID, key.CategoryID, key.Year); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
