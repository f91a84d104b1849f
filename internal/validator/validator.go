// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom tags on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("iso4217", validateISO4217)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("account_type", validateAccountType)
}

func validateISO4217(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	return code == strings.ToUpper(code) && ledger.IsKnownCurrency(code)
}

// validateTransactionType accepts the stored type names in any case.
func validateTransactionType(fl validator.FieldLevel) bool {
	name := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
	for _, known := range models.TransactionTypeNames {
		if name == known {
			return true
		}
	}
	return false
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch models.AccountType(fl.Field().String()) {
	case models.AccountTypeChecking, models.AccountTypeSavings, models.AccountTypeCash,
		models.AccountTypeCreditCard, models.AccountTypeInvestment:
		return true
	}
	return false
}
