package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// defaultCategoryName is used when a transaction names no budget category.
const defaultCategoryName = "Otros"

// transactionService handles transaction-related business logic.
type transactionService struct {
	store *repository.Store
	reconciler
}

// NewTransactionService creates a new TransactionServicer. Every write
// reconciles the affected account and budget balances.
func NewTransactionService(store *repository.Store, balances BalanceServicer, budgets BudgetServicer) TransactionServicer {
	return &transactionService{
		store:      store,
		reconciler: reconciler{balances: balances, budgets: budgets},
	}
}

// resolved holds the looked-up references of a TransactionInput.
type resolved struct {
	account    *models.Account
	typ        *models.TransactionType
	categoryID string
	currencyID string
}

func (s *transactionService) resolve(ctx context.Context, userID string, in TransactionInput) (*resolved, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.AccountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}

	account, err := findOwnedAccount(ctx, s.store, userID, in.AccountID)
	if err != nil {
		return nil, err
	}

	typ, err := s.store.Lookups.TransactionTypeByName(ctx, strings.ToUpper(in.Type))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInvalidTransactionType
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var category *models.BudgetCategory
	if in.CategoryID != "" {
		category, err = s.store.Lookups.CategoryByID(ctx, in.CategoryID)
	} else {
		category, err = s.store.Lookups.CategoryByName(ctx, defaultCategoryName)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if in.ExpenseTypeID != nil {
		if _, err := s.store.Lookups.ExpenseTypeByID(ctx, *in.ExpenseTypeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.ErrExpenseTypeNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	currencyID := account.CurrencyID
	if in.CurrencyCode != "" {
		currency, err := s.store.Currencies.FindByCode(ctx, in.CurrencyCode)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.ErrCurrencyNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		currencyID = currency.ID
	}

	return &resolved{account: account, typ: typ, categoryID: category.ID, currencyID: currencyID}, nil
}

func (r *resolved) apply(tx *models.Transaction, in TransactionInput) {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	tx.AccountID = r.account.ID
	tx.CurrencyID = r.currencyID
	tx.TransactionTypeID = r.typ.ID
	tx.ExpenseTypeID = in.ExpenseTypeID
	tx.BudgetCategoryID = r.categoryID
	tx.Amount = in.Amount
	tx.Date = date.UTC()
	tx.Description = in.Description
	tx.Notes = in.Notes
	tx.IsReimbursable = in.IsReimbursable
	tx.ReimbursementID = in.ReimbursementID
}

// CreateTransaction creates a transaction and reconciles its account and budget.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	ref, err := s.resolve(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	pinned, err := s.settle(ctx, userID, ref.account.ID)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{UserID: userID}
	ref.apply(tx, in)
	if err := s.store.Transactions.Create(ctx, tx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.reconcile(ctx, userID, pinned, []budgetKey{{tx.BudgetCategoryID, tx.Date.Year()}}); err != nil {
		return nil, err
	}
	return s.GetTransactionByID(ctx, userID, tx.ID)
}

// UpdateTransaction rewrites a transaction. When it moves to another account,
// category or year both the old and the new balances are reconciled.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	ref, err := s.resolve(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	oldBudget := budgetKey{tx.BudgetCategoryID, tx.Date.Year()}
	pinned, err := s.settle(ctx, userID, tx.AccountID, ref.account.ID)
	if err != nil {
		return nil, err
	}

	ref.apply(tx, in)
	tx.Account, tx.Currency, tx.TransactionType, tx.ExpenseType, tx.BudgetCategory = nil, nil, nil, nil, nil
	if err := s.store.Transactions.Save(ctx, tx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budgets := []budgetKey{oldBudget, {tx.BudgetCategoryID, tx.Date.Year()}}
	if err := s.reconcile(ctx, userID, pinned, budgets); err != nil {
		return nil, err
	}
	return s.GetTransactionByID(ctx, userID, tx.ID)
}

// DeleteTransaction deletes a transaction and reconciles its account and budget.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	tx, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	pinned, err := s.settle(ctx, userID, tx.AccountID)
	if err != nil {
		return err
	}

	if err := s.store.Transactions.SoftDelete(ctx, tx.ID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.reconcile(ctx, userID, pinned, []budgetKey{{tx.BudgetCategoryID, tx.Date.Year()}})
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	tx, err := s.store.Transactions.FindOwned(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter repository.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	if filter.AccountID != nil {
		if _, err := findOwnedAccount(ctx, s.store, userID, *filter.AccountID); err != nil {
			return nil, err
		}
	}

	txs, total, err := s.store.Transactions.List(ctx, userID, filter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	result := pagination.NewPageResponse(txs, page.Page, page.PageSize, total)
	return &result, nil
}
