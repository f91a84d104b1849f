package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// reportService builds income and expense summaries.
type reportService struct {
	store *repository.Store
}

// NewReportService creates a new ReportServicer.
func NewReportService(store *repository.Store) ReportServicer {
	return &reportService{store: store}
}

// Summarize totals the user's income and expenses between from and to, in
// the base currency. Reimbursements, incoming transfers and inter-account
// moves are counted as excluded.
func (s *reportService) Summarize(ctx context.Context, userID string, from, to time.Time) (*Summary, error) {
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from")
	}

	base, err := s.store.Currencies.FindBase(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrBaseCurrencyNotConfigured
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	from, to = from.UTC(), to.UTC()
	txs, err := s.store.Transactions.ListAll(ctx, userID, repository.TransactionFilter{FromDate: &from, ToDate: &to})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &Summary{
		From:         from,
		To:           to,
		BaseCurrency: base.Code,
		Income:       decimal.Zero,
		Expenses:     decimal.Zero,
		Transactions: len(txs),
	}

	for i := range txs {
		tx := &txs[i]
		class := ledger.Classify(tx.TypeName(), tx.ExpenseTag())
		if !class.IncludeInIncomeReport && !class.IncludeInExpenseReport {
			summary.ExcludedCount++
			continue
		}

		amount := tx.Amount
		if tx.Currency != nil {
			amount, err = ledger.Convert(tx.Amount, tx.Currency, base)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInvalidExchangeRate, err)
			}
		}

		if class.IncludeInIncomeReport {
			summary.Income = summary.Income.Add(amount)
		}
		if class.IncludeInExpenseReport {
			summary.Expenses = summary.Expenses.Add(amount)
		}
	}

	summary.Income = ledger.RoundToCurrency(summary.Income, base.Code)
	summary.Expenses = ledger.RoundToCurrency(summary.Expenses, base.Code)
	summary.Net = summary.Income.Sub(summary.Expenses)
	return summary, nil
}
