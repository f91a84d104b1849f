// Package models holds the gorm-mapped persistence types.
package models

// All lists every model in dependency order, for AutoMigrate.
var All = []interface{}{
	&User{},
	&Currency{},
	&Account{},
	&TransactionType{},
	&ExpenseType{},
	&BudgetCategory{},
	&Budget{},
	&Transaction{},
	&ImportHistory{},
	&AuditLog{},
}
