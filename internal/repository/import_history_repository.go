package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
)

// ImportHistoryRepository persists import audit records.
type ImportHistoryRepository interface {
	Create(ctx context.Context, h *models.ImportHistory) error
	ListByUser(ctx context.Context, userID string, page pagination.PageRequest) ([]models.ImportHistory, int64, error)
}

type importHistoryRepository struct {
	db *gorm.DB
}

// NewImportHistoryRepository creates a gorm-backed ImportHistoryRepository.
func NewImportHistoryRepository(db *gorm.DB) ImportHistoryRepository {
	return &importHistoryRepository{db: db}
}

func (r *importHistoryRepository) Create(ctx context.Context, h *models.ImportHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *importHistoryRepository) ListByUser(ctx context.Context, userID string, page pagination.PageRequest) ([]models.ImportHistory, int64, error) {
	page.Defaults()

	var total int64
	base := r.db.WithContext(ctx).Model(&models.ImportHistory{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ImportHistory
	err := base.Order("imported_at DESC").Scopes(pagination.Paginate(page)).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
