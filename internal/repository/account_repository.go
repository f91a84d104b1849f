package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
)

// AccountRepository persists accounts.
type AccountRepository interface {
	Repository[models.Account]
	// FindOwned loads an active account belonging to userID, with its currency.
	FindOwned(ctx context.Context, userID, accountID string) (*models.Account, error)
	// FindByName returns the user's earliest-created active account with the
	// exact name.
	FindByName(ctx context.Context, userID, name string) (*models.Account, error)
	ListByUser(ctx context.Context, userID string, page pagination.PageRequest) ([]models.Account, int64, error)
	UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	UpdateInitialBalance(ctx context.Context, accountID string, initial decimal.Decimal) error
	UpdateBalances(ctx context.Context, accountID string, initial, balance decimal.Decimal) error
}

type accountRepository struct {
	*GormRepository[models.Account]
	db *gorm.DB
}

// NewAccountRepository creates a gorm-backed AccountRepository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{GormRepository: NewGormRepository[models.Account](db), db: db}
}

func (r *accountRepository) FindOwned(ctx context.Context, userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Currency").
		Where("id = ? AND user_id = ? AND is_active = ?", accountID, userID, true).
		First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *accountRepository) FindByName(ctx context.Context, userID, name string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Currency").
		Where("user_id = ? AND name = ? AND is_active = ?", userID, name, true).
		Order("created_at ASC, id ASC").
		First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID string, page pagination.PageRequest) ([]models.Account, int64, error) {
	page.Defaults()

	var total int64
	base := r.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ? AND is_active = ?", userID, true)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []models.Account
	err := base.Preload("Currency").Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	return r.updateColumns(ctx, accountID, map[string]interface{}{"balance": balance})
}

func (r *accountRepository) UpdateInitialBalance(ctx context.Context, accountID string, initial decimal.Decimal) error {
	return r.updateColumns(ctx, accountID, map[string]interface{}{"initial_balance": initial})
}

func (r *accountRepository) UpdateBalances(ctx context.Context, accountID string, initial, balance decimal.Decimal) error {
	return r.updateColumns(ctx, accountID, map[string]interface{}{
		"initial_balance": initial,
		"balance":         balance,
	})
}

func (r *accountRepository) updateColumns(ctx context.Context, accountID string, columns map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", accountID).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
