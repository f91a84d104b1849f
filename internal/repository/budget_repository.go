package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// BudgetRepository persists budgets.
type BudgetRepository interface {
	Repository[models.Budget]
	// Find returns the user's budget for a category and year.
	Find(ctx context.Context, userID, categoryID string, year int) (*models.Budget, error)
	ListByUser(ctx context.Context, userID string, year *int) ([]models.Budget, error)
	UpdateCurrentBalance(ctx context.Context, budgetID string, balance decimal.Decimal) error
}

type budgetRepository struct {
	*GormRepository[models.Budget]
	db *gorm.DB
}

// NewBudgetRepository creates a gorm-backed BudgetRepository.
func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{GormRepository: NewGormRepository[models.Budget](db), db: db}
}

func (r *budgetRepository) Find(ctx context.Context, userID, categoryID string, year int) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND category_id = ? AND year = ?", userID, categoryID, year).
		First(&budget).Error
	if err != nil {
		return nil, translate(err)
	}
	return &budget, nil
}

func (r *budgetRepository) ListByUser(ctx context.Context, userID string, year *int) ([]models.Budget, error) {
	q := r.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID)
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	var budgets []models.Budget
	err := q.Order("year DESC, created_at ASC").Find(&budgets).Error
	return budgets, err
}

func (r *budgetRepository) UpdateCurrentBalance(ctx context.Context, budgetID string, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.Budget{}).Where("id = ?", budgetID).Update("current_balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
