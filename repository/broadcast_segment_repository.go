package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/heraldhq/herald/models"
)

// BroadcastSegmentRepositoryImpl implements the BroadcastSegmentRepository interface
type BroadcastSegmentRepositoryImpl struct {
	*BaseRepository[models.BroadcastSegment, models.BroadcastSegmentFilter]
}

// NewBroadcastSegmentRepository creates a new broadcast segment repository
func NewBroadcastSegmentRepository(db *gorm.DB) BroadcastSegmentRepository {
	return &BroadcastSegmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BroadcastSegment, models.BroadcastSegmentFilter](db),
	}
}

// SaveSkipConflicts inserts join rows, silently skipping duplicates of the
// (broadcast_id, segment_id) pair.
func (r *BroadcastSegmentRepositoryImpl) SaveSkipConflicts(ctx context.Context, rows []*models.BroadcastSegment) error {
	if len(rows) == 0 {
		return nil
	}

	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "broadcast_id"}, {Name: "segment_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

// ListByBroadcast retrieves all join rows for a broadcast with segments preloaded
func (r *BroadcastSegmentRepositoryImpl) ListByBroadcast(ctx context.Context, broadcastID uint) ([]*models.BroadcastSegment, error) {
	db := r.getDB(ctx)

	var rows []*models.BroadcastSegment
	err := db.Preload("Segment").
		Where("broadcast_id = ?", broadcastID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ByFilter retrieves join rows based on filter criteria
func (r *BroadcastSegmentRepositoryImpl) ByFilter(ctx context.Context, filter models.BroadcastSegmentFilter, orderBy string, limit, offset int) ([]*models.BroadcastSegment, error) {
	db := r.getDB(ctx)

	var rows []*models.BroadcastSegment
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

// Count returns the number of join rows matching the filter
func (r *BroadcastSegmentRepositoryImpl) Count(ctx context.Context, filter models.BroadcastSegmentFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.BroadcastSegment{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *BroadcastSegmentRepositoryImpl) applyFilter(db *gorm.DB, filter models.BroadcastSegmentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.BroadcastID != nil {
		db = db.Where("broadcast_id = ?", *filter.BroadcastID)
	}
	if filter.SegmentID != nil {
		db = db.Where("segment_id = ?", *filter.SegmentID)
	}

	return db
}
