package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency known to the system. ExchangeRate is the
// number of units of this currency per one unit of the base currency.
type Currency struct {
	Base
	Code          string          `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Name          string          `gorm:"not null" json:"name"`
	Symbol        string          `json:"symbol"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(20,10);not null" json:"exchange_rate"`
	IsBase        bool            `gorm:"not null" json:"is_base"`
	RateUpdatedAt *time.Time      `json:"rate_updated_at,omitempty"`
}
