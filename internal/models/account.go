package models

import "github.com/shopspring/decimal"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
)

// Account represents a financial account in the system.
//
// Balance is derived: it always equals InitialBalance plus the signed sum of
// the account's transactions. InitialBalance is NULL until it is set at
// creation, supplied explicitly, or inferred during reconciliation.
type Account struct {
	Base
	UserID         string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string              `gorm:"not null" json:"name"`
	Type           AccountType         `gorm:"not null" json:"type"`
	Description    string              `json:"description"`
	Balance        decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"balance"`
	InitialBalance decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"initial_balance"`
	CurrencyID     string              `gorm:"type:uuid;not null" json:"currency_id"`
	IsActive       bool                `gorm:"not null" json:"is_active"`

	// Relationships
	Currency *Currency `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
}
