package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// UserRepository persists users.
type UserRepository interface {
	Repository[models.User]
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	*GormRepository[models.User]
	db *gorm.DB
}

// NewUserRepository creates a gorm-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{GormRepository: NewGormRepository[models.User](db), db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
