package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a financial transaction in the system. Amount is
// always positive; its sign comes from the transaction type.
type Transaction struct {
	Base
	UserID              string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_transactions_user_fingerprint" json:"user_id"`
	AccountID           string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CurrencyID          string          `gorm:"type:uuid;not null" json:"currency_id"`
	TransactionTypeID   string          `gorm:"type:uuid;not null" json:"transaction_type_id"`
	ExpenseTypeID       *string         `gorm:"type:uuid" json:"expense_type_id,omitempty"`
	BudgetCategoryID    string          `gorm:"type:uuid;not null;index" json:"budget_category_id"`
	Amount              decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date                time.Time       `gorm:"not null;index" json:"date"`
	Description         string          `json:"description"`
	Notes               string          `json:"notes,omitempty"`
	IsReimbursable      bool            `gorm:"not null" json:"is_reimbursable"`
	ReimbursementID     *string         `gorm:"size:64" json:"reimbursement_id,omitempty"`
	LinkedTransactionID *string         `gorm:"type:uuid" json:"linked_transaction_id,omitempty"`

	// Fingerprint identifies an imported row so re-importing the same file
	// does not duplicate it. Manually created transactions leave it NULL.
	Fingerprint *string `gorm:"size:64;uniqueIndex:idx_transactions_user_fingerprint" json:"-"`

	// Relationships
	Account         *Account         `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Currency        *Currency        `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	TransactionType *TransactionType `gorm:"foreignKey:TransactionTypeID" json:"transaction_type,omitempty"`
	ExpenseType     *ExpenseType     `gorm:"foreignKey:ExpenseTypeID" json:"expense_type,omitempty"`
	BudgetCategory  *BudgetCategory  `gorm:"foreignKey:BudgetCategoryID" json:"budget_category,omitempty"`
}

// TypeName returns the loaded transaction type name, or "" if the
// relationship was not preloaded.
func (t *Transaction) TypeName() string {
	if t.TransactionType == nil {
		return ""
	}
	return t.TransactionType.Name
}

// ExpenseTag returns the loaded expense tag name, or "".
func (t *Transaction) ExpenseTag() string {
	if t.ExpenseType == nil {
		return ""
	}
	return t.ExpenseType.Name
}
