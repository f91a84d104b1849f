package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ExportHeader is the column order written by WriteCSV.
var ExportHeader = []string{
	ColAccountName,
	ColAccountID,
	ColDate,
	ColAmount,
	ColExpenseType,
	ColDescription,
	ColCategory,
	ColReimbursable,
	ColReimbursementID,
	ColTransactionType,
}

// ExportRow is one transaction flattened for CSV output.
type ExportRow struct {
	AccountName     string
	AccountID       string
	Date            time.Time
	Amount          decimal.Decimal
	ExpenseType     string
	Description     string
	Category        string
	Reimbursable    bool
	ReimbursementID string
	TransactionType string
}

func (r ExportRow) fields() []string {
	return []string{
		r.AccountName,
		r.AccountID,
		r.Date.UTC().Format(ExportDateLayout),
		r.Amount.String(),
		r.ExpenseType,
		r.Description,
		r.Category,
		FormatYesNo(r.Reimbursable),
		r.ReimbursementID,
		r.TransactionType,
	}
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.fields()); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
