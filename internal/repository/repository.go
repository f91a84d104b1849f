// Package repository is the persistence boundary of the reconciliation engine.
// Services depend on the interfaces declared here; the gorm implementations
// work against postgres in production and sqlite in tests.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Repository is the CRUD surface shared by every entity repository.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
}

// GormRepository implements Repository on top of gorm.
type GormRepository[T any] struct {
	db *gorm.DB
}

// NewGormRepository creates a GormRepository for T.
func NewGormRepository[T any](db *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{db: db}
}

// Create inserts entity.
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// FindByID loads the entity with the given primary key.
func (r *GormRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

// Save updates every column of entity.
func (r *GormRepository[T]) Save(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit("created_at").Save(entity).Error
}

// Delete soft-deletes the entity with the given primary key.
func (r *GormRepository[T]) Delete(ctx context.Context, id string) error {
	var entity T
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps gorm's not-found error to ErrNotFound.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
