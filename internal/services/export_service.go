package services

import (
	"bytes"
	"context"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/importer"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// exportService handles CSV export.
type exportService struct {
	store *repository.Store
}

// NewExportService creates a new ExportServicer.
func NewExportService(store *repository.Store) ExportServicer {
	return &exportService{store: store}
}

// ExportTransactions writes the user's matching transactions, oldest first,
// in the format ImportTransactions reads.
func (s *exportService) ExportTransactions(ctx context.Context, userID string, filter repository.TransactionFilter) ([]byte, error) {
	if filter.AccountID != nil {
		if _, err := findOwnedAccount(ctx, s.store, userID, *filter.AccountID); err != nil {
			return nil, err
		}
	}

	txs, err := s.store.Transactions.ListAll(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows := make([]importer.ExportRow, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		row := importer.ExportRow{
			AccountID:       tx.AccountID,
			Date:            tx.Date,
			Amount:          tx.Amount,
			ExpenseType:     tx.ExpenseTag(),
			Description:     tx.Description,
			Reimbursable:    tx.IsReimbursable,
			TransactionType: tx.TypeName(),
		}
		if tx.Account != nil {
			row.AccountName = tx.Account.Name
		}
		if tx.BudgetCategory != nil {
			row.Category = tx.BudgetCategory.Name
		}
		if tx.ReimbursementID != nil {
			row.ReimbursementID = *tx.ReimbursementID
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := importer.WriteCSV(&buf, rows); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}
