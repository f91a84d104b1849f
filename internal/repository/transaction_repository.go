package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
)

// bulkInsertBatchSize bounds the number of rows per INSERT statement.
const bulkInsertBatchSize = 200

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID  *string
	CategoryID *string
	Type       *string
	FromDate   *time.Time
	ToDate     *time.Time
}

// TransactionRepository persists transactions.
type TransactionRepository interface {
	Repository[models.Transaction]
	// FindOwned loads a transaction belonging to userID with every relationship.
	FindOwned(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	// ListByAccount returns all of an account's transactions with their type.
	ListByAccount(ctx context.Context, accountID string) ([]models.Transaction, error)
	// ListByCategoryInRange returns the user's transactions filed under
	// categoryID with from <= date <= to, with type, tag and currency.
	ListByCategoryInRange(ctx context.Context, userID, categoryID string, from, to time.Time) ([]models.Transaction, error)
	List(ctx context.Context, userID string, filter TransactionFilter, page pagination.PageRequest) ([]models.Transaction, int64, error)
	// ListAll returns every matching transaction with every relationship,
	// oldest first.
	ListAll(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	// BulkInsert inserts txs, silently skipping rows whose (user, fingerprint)
	// already exists. It returns the number of rows actually inserted.
	BulkInsert(ctx context.Context, txs []models.Transaction) (int64, error)
	// SoftDelete clears the fingerprint and soft-deletes the transaction so a
	// later import of the same row is not treated as a duplicate.
	SoftDelete(ctx context.Context, transactionID string) error
}

type transactionRepository struct {
	*GormRepository[models.Transaction]
	db *gorm.DB
}

// NewTransactionRepository creates a gorm-backed TransactionRepository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{GormRepository: NewGormRepository[models.Transaction](db), db: db}
}

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Account").
		Preload("Currency").
		Preload("TransactionType").
		Preload("ExpenseType").
		Preload("BudgetCategory")
}

func (r *transactionRepository) FindOwned(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Scopes(preloadAll).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&tx).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("TransactionType").
		Where("account_id = ?", accountID).
		Order("date ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) ListByCategoryInRange(ctx context.Context, userID, categoryID string, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("TransactionType").
		Preload("ExpenseType").
		Preload("Currency").
		Where("user_id = ? AND budget_category_id = ? AND date >= ? AND date <= ?", userID, categoryID, from, to).
		Order("date ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) filtered(ctx context.Context, userID string, filter TransactionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	if filter.AccountID != nil {
		q = q.Where("transactions.account_id = ?", *filter.AccountID)
	}
	if filter.CategoryID != nil {
		q = q.Where("transactions.budget_category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		sub := r.db.Model(&models.TransactionType{}).Select("id").Where("name = ?", *filter.Type)
		q = q.Where("transactions.transaction_type_id IN (?)", sub)
	}
	if filter.FromDate != nil {
		q = q.Where("transactions.date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("transactions.date <= ?", *filter.ToDate)
	}
	return q
}

func (r *transactionRepository) List(ctx context.Context, userID string, filter TransactionFilter, page pagination.PageRequest) ([]models.Transaction, int64, error) {
	page.Defaults()

	var total int64
	if err := r.filtered(ctx, userID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := r.filtered(ctx, userID, filter).
		Scopes(preloadAll, pagination.Paginate(page)).
		Order("transactions.date DESC, transactions.id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *transactionRepository) ListAll(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.filtered(ctx, userID, filter).
		Scopes(preloadAll).
		Order("transactions.date ASC, transactions.id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) BulkInsert(ctx context.Context, txs []models.Transaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&txs, bulkInsertBatchSize)
	return res.RowsAffected, res.Error
}

func (r *transactionRepository) SoftDelete(ctx context.Context, transactionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).Where("id = ?", transactionID).Update("fingerprint", nil)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", transactionID).Delete(&models.Transaction{}).Error
	})
}
