package services

import (
	"context"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
)

// lookupService exposes the shared reference data clients pick from.
type lookupService struct {
	store *repository.Store
}

// NewLookupService creates a new LookupServicer.
func NewLookupService(store *repository.Store) LookupServicer {
	return &lookupService{store: store}
}

// ListCategories returns every budget category ordered by name.
func (s *lookupService) ListCategories(ctx context.Context) ([]models.BudgetCategory, error) {
	categories, err := s.store.Lookups.Categories(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// ListExpenseTypes returns every expense tag ordered by name.
func (s *lookupService) ListExpenseTypes(ctx context.Context) ([]models.ExpenseType, error) {
	tags, err := s.store.Lookups.ExpenseTypes(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}
