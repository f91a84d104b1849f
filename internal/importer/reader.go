// Package importer parses and writes the transaction CSV format. It knows
// nothing about persistence: rows come out normalised, with per-row errors,
// and the import service resolves them against the database.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
)

// Canonical column names.
const (
	ColAccountID       = "account_id"
	ColAccountName     = "account_name"
	ColDate            = "date"
	ColAmount          = "amount"
	ColTransactionType = "transaction_type"
	ColExpenseType     = "expense_type"
	ColDescription     = "description"
	ColCategory        = "category"
	ColReimbursable    = "reimbursable"
	ColReimbursementID = "reimbursement_id"
	ColCurrency        = "currency"
	ColNotes           = "notes"
)

// headerAliases maps normalised header text to a canonical column.
var headerAliases = map[string]string{
	"account_id": ColAccountID, "accountid": ColAccountID, "cuenta_id": ColAccountID, "id_cuenta": ColAccountID,
	"account": ColAccountName, "account_name": ColAccountName, "cuenta": ColAccountName, "nombre_cuenta": ColAccountName,
	"date": ColDate, "fecha": ColDate,
	"amount": ColAmount, "monto": ColAmount, "importe": ColAmount, "cantidad": ColAmount,
	"transaction_type": ColTransactionType, "type": ColTransactionType, "tipo": ColTransactionType,
	"tipo_transaccion": ColTransactionType, "tipo_de_transaccion": ColTransactionType,
	"expense_type": ColExpenseType, "tipo_gasto": ColExpenseType, "tipo_de_gasto": ColExpenseType, "etiqueta": ColExpenseType,
	"description": ColDescription, "descripcion": ColDescription, "concepto": ColDescription,
	"category": ColCategory, "categoria": ColCategory, "budget_category": ColCategory,
	"reimbursable": ColReimbursable, "reembolsable": ColReimbursable,
	"reimbursement_id": ColReimbursementID, "id_reembolso": ColReimbursementID,
	"currency": ColCurrency, "moneda": ColCurrency,
	"notes": ColNotes, "notas": ColNotes,
}

// ErrNoHeader is returned for input without a header line.
var ErrNoHeader = errors.New("csv input has no header row")

// Record is one CSV data row keyed by canonical column name.
type Record struct {
	// Line is the 1-based line number in the file; the header is line 1.
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of a column, or "".
func (r Record) Get(col string) string {
	return strings.TrimSpace(r.Fields[col])
}

// Document is a parsed CSV file.
type Document struct {
	// Columns holds every canonical column present in the header.
	Columns map[string]bool
	Records []Record
}

// Has reports whether the header contained the column.
func (d *Document) Has(col string) bool {
	return d.Columns[col]
}

// HasAccountInfo reports whether any row names an account.
func (d *Document) HasAccountInfo() bool {
	for _, rec := range d.Records {
		if rec.Get(ColAccountID) != "" || rec.Get(ColAccountName) != "" {
			return true
		}
	}
	return false
}

// NormalizeHeader folds a header cell to the form used in headerAliases.
func NormalizeHeader(h string) string {
	h = ledger.Fold(h)
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// Parse reads a CSV document. Unknown columns are ignored and short rows
// leave the missing columns empty.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make([]string, len(header))
	doc := &Document{Columns: make(map[string]bool)}
	for i, h := range header {
		if canonical, ok := headerAliases[NormalizeHeader(h)]; ok {
			columns[i] = canonical
			doc.Columns[canonical] = true
		}
	}
	if len(doc.Columns) == 0 {
		return nil, ErrNoHeader
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		line, _ := cr.FieldPos(0)
		rec := Record{Line: line, Fields: make(map[string]string, len(columns))}
		blank := true
		for i, v := range fields {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			rec.Fields[columns[i]] = v
			if strings.TrimSpace(v) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		doc.Records = append(doc.Records, rec)
	}

	return doc, nil
}
