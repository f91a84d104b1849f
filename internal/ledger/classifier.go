// Package ledger holds the pure rules shared by every balance computation:
// how a transaction type moves an account and a budget, and how amounts
// move between currencies.
package ledger

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// Classification describes the effect of a transaction on ledgers and reports.
type Classification struct {
	// LedgerSign is +1 when the transaction raises the account balance,
	// -1 when it lowers it, and 0 for unknown types.
	LedgerSign             int
	IncludeInBudget        bool
	IncludeInIncomeReport  bool
	IncludeInExpenseReport bool
}

// interAccountTags are expense tags marking money moved between a user's own
// accounts. Matching is done on the folded form.
var interAccountTags = map[string]bool{
	Fold("Transferencia Entre Cuentas"):         true,
	Fold("Transferencia entre cuentas propias"): true,
	Fold("Inter-Account Transfer"):              true,
}

// Classify returns the ledger, budget and report effect of a transaction with
// the given type name and optional expense tag.
func Classify(typeName, expenseTag string) Classification {
	interAccount := IsInterAccountTransfer(expenseTag)

	switch strings.ToUpper(strings.TrimSpace(typeName)) {
	case models.TransactionTypeIncome:
		return Classification{
			LedgerSign:            1,
			IncludeInBudget:       !interAccount,
			IncludeInIncomeReport: !interAccount,
		}
	case models.TransactionTypeExpense, models.TransactionTypeTransfer:
		return Classification{
			LedgerSign:             -1,
			IncludeInBudget:        !interAccount,
			IncludeInExpenseReport: !interAccount,
		}
	case models.TransactionTypeReimbursement, models.TransactionTypeAccountTransferIn:
		return Classification{LedgerSign: 1}
	}
	return Classification{}
}

// LedgerSign returns the sign a transaction type applies to its account.
func LedgerSign(typeName string) int {
	return Classify(typeName, "").LedgerSign
}

// SignedAmount returns amount with the ledger sign of typeName applied.
func SignedAmount(typeName string, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(LedgerSign(typeName))))
}

// IsInterAccountTransfer reports whether an expense tag marks a transfer
// between the user's own accounts.
func IsInterAccountTransfer(tag string) bool {
	if tag == "" {
		return false
	}
	return interAccountTags[Fold(tag)]
}

// Fold lowercases s, strips diacritics and collapses runs of whitespace so
// that "  Transferencia  ENTRE cuentas" and "transferencia entre cuentas"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
