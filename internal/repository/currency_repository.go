package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// CurrencyRepository persists currencies and their exchange rates.
type CurrencyRepository interface {
	Repository[models.Currency]
	FindByCode(ctx context.Context, code string) (*models.Currency, error)
	// FindBase returns the currency flagged as base.
	FindBase(ctx context.Context) (*models.Currency, error)
	List(ctx context.Context) ([]models.Currency, error)
	UpdateRate(ctx context.Context, currencyID string, rate decimal.Decimal, at time.Time) error
}

type currencyRepository struct {
	*GormRepository[models.Currency]
	db *gorm.DB
}

// NewCurrencyRepository creates a gorm-backed CurrencyRepository.
func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{GormRepository: NewGormRepository[models.Currency](db), db: db}
}

func (r *currencyRepository) FindByCode(ctx context.Context, code string) (*models.Currency, error) {
	var c models.Currency
	if err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *currencyRepository) FindBase(ctx context.Context) (*models.Currency, error) {
	var c models.Currency
	if err := r.db.WithContext(ctx).Where("is_base = ?", true).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *currencyRepository) List(ctx context.Context) ([]models.Currency, error) {
	var list []models.Currency
	err := r.db.WithContext(ctx).Order("is_base DESC, code ASC").Find(&list).Error
	return list, err
}

func (r *currencyRepository) UpdateRate(ctx context.Context, currencyID string, rate decimal.Decimal, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Currency{}).Where("id = ?", currencyID).Updates(map[string]interface{}{
		"exchange_rate":   rate,
		"rate_updated_at": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
