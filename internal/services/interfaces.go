package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/exchange"
	"github.com/gnzdotmx/okane-track-sub000/internal/importer"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID string, input AccountInput) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error)
}

// AccountInput holds the fields of a new account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	Description    string
	CurrencyCode   string
	InitialBalance decimal.Decimal
}

// BalanceResult reports the outcome of an account reconciliation.
type BalanceResult struct {
	Account                *models.Account `json:"account"`
	InitialBalance         decimal.Decimal `json:"initial_balance"`
	CalculatedBalance      decimal.Decimal `json:"calculated_balance"`
	TransactionCount       int             `json:"transaction_count"`
	InitialBalanceInferred bool            `json:"initial_balance_inferred"`
	// Warning is set when the inferred initial balance could not be
	// persisted. The balance itself was still written.
	Warning string `json:"warning,omitempty"`
}

// BalanceServicer recomputes account balances from their transactions.
type BalanceServicer interface {
	// RecomputeAccountBalance rewrites the stored balance from the initial
	// balance and the signed transaction sum and returns it.
	RecomputeAccountBalance(ctx context.Context, userID, accountID string) (decimal.Decimal, error)
	// RecalculateAccountBalance is RecomputeAccountBalance with an optional
	// explicit initial balance and a detailed result.
	RecalculateAccountBalance(ctx context.Context, userID, accountID string, initial *decimal.Decimal) (*BalanceResult, error)
	// RebaseAccountBalance sets balance = start + Σ sign·amount and writes
	// only the balance; the stored initial balance is left untouched.
	RebaseAccountBalance(ctx context.Context, userID, accountID string, start decimal.Decimal) (*BalanceResult, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	// RecomputeBudgetBalance returns nil, nil when the user has no budget for
	// the category and year.
	RecomputeBudgetBalance(ctx context.Context, userID, categoryID string, year int) (*models.Budget, error)
	RecomputeUserBudgets(ctx context.Context, userID string, year int) ([]models.Budget, error)
	CreateBudget(ctx context.Context, userID, categoryID string, year int, startingBalance decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string, year *int) ([]models.Budget, error)
}

// RateUpdateSummary reports what UpdateExchangeRates changed.
type RateUpdateSummary struct {
	Base     string   `json:"base"`
	Provider string   `json:"provider,omitempty"`
	Updated  []string `json:"updated"`
	Missing  []string `json:"missing"`
	// Stale is true when no provider answered and every stored rate was kept.
	Stale bool `json:"stale"`
}

// CurrencyServicer defines the contract for currencies and conversion.
type CurrencyServicer interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)
	ConvertToBaseCurrency(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error)
	// FetchExchangeRates returns nil when every provider fails.
	FetchExchangeRates(ctx context.Context, baseCode string) *exchange.RateSet
	UpdateExchangeRates(ctx context.Context) (*RateUpdateSummary, error)
	CreateCurrency(ctx context.Context, code, name, symbol string, rate decimal.Decimal) (*models.Currency, error)
	ListCurrencies(ctx context.Context) ([]models.Currency, error)
	BaseCurrency(ctx context.Context) (*models.Currency, error)
}

// TransactionInput holds the writable fields of a transaction.
type TransactionInput struct {
	AccountID       string
	Type            string
	CategoryID      string
	ExpenseTypeID   *string
	CurrencyCode    string // empty uses the account currency
	Amount          decimal.Decimal
	Date            time.Time
	Description     string
	Notes           string
	IsReimbursable  bool
	ReimbursementID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter repository.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// ImportRequest is one CSV upload.
type ImportRequest struct {
	UserID string
	// AccountID, when set, applies to every row and overrides row columns.
	AccountID string
	FileName  string
	Content   []byte
}

// ImportResult summarises an import. Success is true only when no row failed.
type ImportResult struct {
	Success       bool                `json:"success"`
	TotalRecords  int                 `json:"total_records"`
	SuccessCount  int                 `json:"success_count"`
	ErrorCount    int                 `json:"error_count"`
	InsertedCount int                 `json:"inserted_count"`
	Errors        []importer.RowError `json:"errors"`
	ImportID      string              `json:"import_id,omitempty"`
}

// ImportServicer defines the contract for bulk CSV import.
type ImportServicer interface {
	ImportTransactions(ctx context.Context, req ImportRequest) (*ImportResult, error)
	GetImportHistory(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ImportHistory], error)
}

// ExportServicer defines the contract for CSV export.
type ExportServicer interface {
	ExportTransactions(ctx context.Context, userID string, filter repository.TransactionFilter) ([]byte, error)
}

// Summary holds base-currency income and expense totals for a date range.
type Summary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	BaseCurrency  string          `json:"base_currency"`
	Income        decimal.Decimal `json:"income"`
	Expenses      decimal.Decimal `json:"expenses"`
	Net           decimal.Decimal `json:"net"`
	Transactions  int             `json:"transactions"`
	ExcludedCount int             `json:"excluded_count"`
}

// ReportServicer defines the contract for income/expense reporting.
type ReportServicer interface {
	Summarize(ctx context.Context, userID string, from, to time.Time) (*Summary, error)
}

// LookupServicer lists shared reference data.
type LookupServicer interface {
	ListCategories(ctx context.Context) ([]models.BudgetCategory, error)
	ListExpenseTypes(ctx context.Context) ([]models.ExpenseType, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
