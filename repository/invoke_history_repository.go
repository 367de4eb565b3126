package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/heraldhq/herald/models"
)

// InvokeHistoryRepositoryImpl implements the InvokeHistoryRepository interface
type InvokeHistoryRepositoryImpl struct {
	*BaseRepository[models.InvokeHistory, models.InvokeHistoryFilter]
}

// NewInvokeHistoryRepository creates a new invoke history repository
func NewInvokeHistoryRepository(db *gorm.DB) InvokeHistoryRepository {
	return &InvokeHistoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.InvokeHistory, models.InvokeHistoryFilter](db),
	}
}

// ListAll retrieves every invoke history row in insertion order
func (r *InvokeHistoryRepositoryImpl) ListAll(ctx context.Context) ([]*models.InvokeHistory, error) {
	return r.ByFilter(ctx, models.InvokeHistoryFilter{}, "id ASC", 0, 0)
}

// ByFilter retrieves history rows based on filter criteria
func (r *InvokeHistoryRepositoryImpl) ByFilter(ctx context.Context, filter models.InvokeHistoryFilter, orderBy string, limit, offset int) ([]*models.InvokeHistory, error) {
	db := r.getDB(ctx)

	var rows []*models.InvokeHistory
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// Count returns the number of history rows matching the filter
func (r *InvokeHistoryRepositoryImpl) Count(ctx context.Context, filter models.InvokeHistoryFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.InvokeHistory{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *InvokeHistoryRepositoryImpl) applyFilter(db *gorm.DB, filter models.InvokeHistoryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Endpoint != nil {
		db = db.Where("endpoint = ?", *filter.Endpoint)
	}
	if filter.InvokedAfter != nil {
		db = db.Where("invoked_at >= ?", *filter.InvokedAfter)
	}
	if filter.InvokedBefore != nil {
		db = db.Where("invoked_at < ?", *filter.InvokedBefore)
	}

	return db
}
