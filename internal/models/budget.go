package models

import "github.com/shopspring/decimal"

// BudgetCategory is a global bucket transactions are filed under, with a
// target share of income.
type BudgetCategory struct {
	Base
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Percentage  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Description string          `json:"description"`
}

// Budget tracks a user's running balance for one category in one calendar year.
// CurrentBalance is derived from StartingBalance and the year's transactions.
type Budget struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_year" json:"user_id"`
	CategoryID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_year" json:"category_id"`
	Year            int             `gorm:"not null;uniqueIndex:idx_budgets_user_category_year" json:"year"`
	StartingBalance decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"starting_balance"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"allocated_amount"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"current_balance"`

	// Relationships
	Category *BudgetCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
