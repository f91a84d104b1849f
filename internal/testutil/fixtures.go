package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// BaseCurrency returns the seeded base currency.
func BaseCurrency(t *testing.T, db *gorm.DB) *models.Currency {
	t.Helper()

	var c models.Currency
	if err := db.Where("is_base = ?", true).First(&c).Error; err != nil {
		t.Fatalf("failed to load base currency: %v", err)
	}
	return &c
}

// CreateTestCurrency creates a non-base currency with the given rate.
func CreateTestCurrency(t *testing.T, db *gorm.DB, code, rate string) *models.Currency {
	t.Helper()

	c := &models.Currency{
		Code:         code,
		Name:         code,
		Symbol:       code,
		ExchangeRate: Dec(t, rate),
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create test currency: %v", err)
	}
	return c
}

// AccountOpts customises CreateTestAccount.
type AccountOpts struct {
	Name           string
	CurrencyID     string
	Balance        string
	InitialBalance string // empty leaves initial_balance NULL
}

// CreateTestAccount creates an active checking account. Unset options
// default to a unique name, the base currency and a zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, opts AccountOpts) *models.Account {
	t.Helper()

	if opts.Name == "" {
		opts.Name = fmt.Sprintf("Test Account %d", nextID())
	}
	if opts.CurrencyID == "" {
		opts.CurrencyID = BaseCurrency(t, db).ID
	}
	balance := decimal.Zero
	if opts.Balance != "" {
		balance = Dec(t, opts.Balance)
	}

	account := &models.Account{
		UserID:     userID,
		Name:       opts.Name,
		Type:       models.AccountTypeChecking,
		Balance:    balance,
		CurrencyID: opts.CurrencyID,
		IsActive:   true,
	}
	if opts.InitialBalance != "" {
		account.InitialBalance = decimal.NewNullDecimal(Dec(t, opts.InitialBalance))
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// TransactionType returns the seeded transaction type with the given name.
func TransactionType(t *testing.T, db *gorm.DB, name string) *models.TransactionType {
	t.Helper()

	var row models.TransactionType
	if err := db.Where("name = ?", name).First(&row).Error; err != nil {
		t.Fatalf("transaction type %s not seeded: %v", name, err)
	}
	return &row
}

// ExpenseType returns the seeded expense tag with the given name.
func ExpenseType(t *testing.T, db *gorm.DB, name string) *models.ExpenseType {
	t.Helper()

	var row models.ExpenseType
	if err := db.Where("name = ?", name).First(&row).Error; err != nil {
		t.Fatalf("expense type %s not seeded: %v", name, err)
	}
	return &row
}

// Category returns the seeded budget category with the given name.
func Category(t *testing.T, db *gorm.DB, name string) *models.BudgetCategory {
	t.Helper()

	var row models.BudgetCategory
	if err := db.Where("name = ?", name).First(&row).Error; err != nil {
		t.Fatalf("budget category %s not seeded: %v", name, err)
	}
	return &row
}

// TxOpts customises CreateTestTransaction.
type TxOpts struct {
	Type        string
	Amount      string
	Date        time.Time
	CategoryID  string
	CurrencyID  string
	ExpenseTag  string
	Description string
}

// CreateTestTransaction inserts a transaction directly, without running any
// reconciliation. Unset options default to the account's currency, the
// "Otros" category and today's date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, account *models.Account, opts TxOpts) *models.Transaction {
	t.Helper()

	if opts.Date.IsZero() {
		opts.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if opts.CategoryID == "" {
		opts.CategoryID = Category(t, db, "Otros").ID
	}
	if opts.CurrencyID == "" {
		opts.CurrencyID = account.CurrencyID
	}

	tx := &models.Transaction{
		UserID:            account.UserID,
		AccountID:         account.ID,
		CurrencyID:        opts.CurrencyID,
		TransactionTypeID: TransactionType(t, db, opts.Type).ID,
		BudgetCategoryID:  opts.CategoryID,
		Amount:            Dec(t, opts.Amount),
		Date:              opts.Date,
		Description:       opts.Description,
	}
	if opts.ExpenseTag != "" {
		id := ExpenseType(t, db, opts.ExpenseTag).ID
		tx.ExpenseTypeID = &id
	}
	if err := db.Omit("Account", "Currency", "TransactionType", "ExpenseType", "BudgetCategory").Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for a category and year.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, year int, starting string) *models.Budget {
	t.Helper()

	start := Dec(t, starting)
	budget := &models.Budget{
		UserID:          userID,
		CategoryID:      categoryID,
		Year:            year,
		StartingBalance: start,
		AllocatedAmount: start,
		CurrentBalance:  start,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// ReloadAccount reads an account back from the database.
func ReloadAccount(t *testing.T, db *gorm.DB, id string) *models.Account {
	t.Helper()

	var a models.Account
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return &a
}

// AssertDecimal fails the test when got != want.
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()

	if !got.Equal(Dec(t, want)) {
		t.Errorf("%s = %s, want %s", what, got.String(), want)
	}
}
