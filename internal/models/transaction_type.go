package models

// Transaction type names. The set is closed; the classifier treats any other
// name as having no ledger or budget effect.
const (
	TransactionTypeIncome            = "INCOME"
	TransactionTypeExpense           = "EXPENSE"
	TransactionTypeTransfer          = "TRANSFER"
	TransactionTypeReimbursement     = "REIMBURSEMENT"
	TransactionTypeAccountTransferIn = "ACCOUNT_TRANSFER_IN"
)

// TransactionTypeNames lists every supported transaction type name.
var TransactionTypeNames = []string{
	TransactionTypeIncome,
	TransactionTypeExpense,
	TransactionTypeTransfer,
	TransactionTypeReimbursement,
	TransactionTypeAccountTransferIn,
}

// TransactionType is a reference row naming how a transaction moves money.
type TransactionType struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

// ExpenseType is a free-form tag attached to a transaction, e.g. "Groceries"
// or "Transferencia Entre Cuentas".
type ExpenseType struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}
