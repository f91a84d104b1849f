package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories used by the services. Fields are interfaces
// so tests can swap a single repository for a failing fake.
type Store struct {
	db *gorm.DB

	Users        UserRepository
	Accounts     AccountRepository
	Transactions TransactionRepository
	Budgets      BudgetRepository
	Currencies   CurrencyRepository
	Lookups      LookupRepository
	Imports      ImportHistoryRepository
}

// NewStore creates a Store with gorm-backed repositories.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Accounts:     NewAccountRepository(db),
		Transactions: NewTransactionRepository(db),
		Budgets:      NewBudgetRepository(db),
		Currencies:   NewCurrencyRepository(db),
		Lookups:      NewLookupRepository(db),
		Imports:      NewImportHistoryRepository(db),
	}
}

// DB returns the underlying database handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// InTx runs fn with a Store bound to a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
