package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// DefaultExpenseTypes are the expense tags available out of the box.
var DefaultExpenseTypes = []string{
	"Comida",
	"Transporte",
	"Servicios",
	"Salud",
	"Entretenimiento",
	"Educación",
	"Otros",
	"Transferencia Entre Cuentas",
	"Inter-Account Transfer",
}

// DefaultBudgetCategories maps category name to its target share of income.
var DefaultBudgetCategories = []struct {
	Name       string
	Percentage int64
}{
	{"Necesidades", 50},
	{"Deseos", 30},
	{"Ahorro", 20},
	{"Otros", 0},
}

// Seed inserts the reference rows the reconciliation engine depends on:
// transaction types, expense tags, budget categories and the base currency.
// It is safe to run repeatedly.
func Seed(db *gorm.DB, baseCurrency string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range models.TransactionTypeNames {
			row := models.TransactionType{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seeding transaction type %s: %w", name, err)
			}
		}

		for _, name := range DefaultExpenseTypes {
			row := models.ExpenseType{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seeding expense type %s: %w", name, err)
			}
		}

		for _, c := range DefaultBudgetCategories {
			row := models.BudgetCategory{Name: c.Name, Percentage: decimal.NewFromInt(c.Percentage)}
			if err := tx.Where("name = ?", c.Name).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seeding budget category %s: %w", c.Name, err)
			}
		}

		return seedBaseCurrency(tx, baseCurrency)
	})
}

func seedBaseCurrency(tx *gorm.DB, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}

	var base models.Currency
	err := tx.Where("is_base = ?", true).First(&base).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("looking up base currency: %w", err)
	}

	var existing models.Currency
	err = tx.Where("code = ?", code).First(&existing).Error
	switch {
	case err == nil:
		return tx.Model(&existing).Updates(map[string]interface{}{
			"is_base":       true,
			"exchange_rate": decimal.NewFromInt(1),
		}).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("looking up currency %s: %w", code, err)
	}

	symbol := code
	if c := money.GetCurrency(code); c != nil {
		symbol = c.Grapheme
	}
	return tx.Create(&models.Currency{
		Code:         code,
		Name:         code,
		Symbol:       symbol,
		ExchangeRate: decimal.NewFromInt(1),
		IsBase:       true,
	}).Error
}
