package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// LookupRepository reads the reference tables: transaction types, expense
// tags and budget categories.
type LookupRepository interface {
	TransactionTypeByName(ctx context.Context, name string) (*models.TransactionType, error)
	TransactionTypeByID(ctx context.Context, id string) (*models.TransactionType, error)
	ExpenseTypes(ctx context.Context) ([]models.ExpenseType, error)
	ExpenseTypeByID(ctx context.Context, id string) (*models.ExpenseType, error)
	Categories(ctx context.Context) ([]models.BudgetCategory, error)
	CategoryByID(ctx context.Context, id string) (*models.BudgetCategory, error)
	CategoryByName(ctx context.Context, name string) (*models.BudgetCategory, error)
}

type lookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository creates a gorm-backed LookupRepository.
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func first[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var row T
	if err := db.Where(query, args...).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *lookupRepository) TransactionTypeByName(ctx context.Context, name string) (*models.TransactionType, error) {
	return first[models.TransactionType](r.db.WithContext(ctx), "name = ?", name)
}

func (r *lookupRepository) TransactionTypeByID(ctx context.Context, id string) (*models.TransactionType, error) {
	return first[models.TransactionType](r.db.WithContext(ctx), "id = ?", id)
}

func (r *lookupRepository) ExpenseTypes(ctx context.Context) ([]models.ExpenseType, error) {
	var rows []models.ExpenseType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) ExpenseTypeByID(ctx context.Context, id string) (*models.ExpenseType, error) {
	return first[models.ExpenseType](r.db.WithContext(ctx), "id = ?", id)
}

func (r *lookupRepository) Categories(ctx context.Context) ([]models.BudgetCategory, error) {
	var rows []models.BudgetCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) CategoryByID(ctx context.Context, id string) (*models.BudgetCategory, error) {
	return first[models.BudgetCategory](r.db.WithContext(ctx), "id = ?", id)
}

func (r *lookupRepository) CategoryByName(ctx context.Context, name string) (*models.BudgetCategory, error) {
	return first[models.BudgetCategory](r.db.WithContext(ctx), "name = ?", name)
}
