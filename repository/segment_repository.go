package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/heraldhq/herald/models"
)

// AudienceSegmentRepositoryImpl implements the AudienceSegmentRepository interface
type AudienceSegmentRepositoryImpl struct {
	*BaseRepository[models.AudienceSegment, models.AudienceSegmentFilter]
}

// NewAudienceSegmentRepository creates a new audience segment repository
func NewAudienceSegmentRepository(db *gorm.DB) AudienceSegmentRepository {
	return &AudienceSegmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AudienceSegment, models.AudienceSegmentFilter](db),
	}
}

// SaveSkipConflicts inserts segments, silently skipping rows whose query
// already exists (conflict-skip semantics on the unique query index).
func (r *AudienceSegmentRepositoryImpl) SaveSkipConflicts(ctx context.Context, segments []*models.AudienceSegment) error {
	if len(segments) == 0 {
		return nil
	}

	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoNothing: true,
	}).Create(&segments).Error
}

// ByQueries retrieves segments whose query text matches any of the given
// queries. Used to resolve assigned IDs after a conflict-skip insert,
// where skipped rows come back without their IDs populated.
func (r *AudienceSegmentRepositoryImpl) ByQueries(ctx context.Context, queries []string) ([]*models.AudienceSegment, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var segments []*models.AudienceSegment
	if err := db.Where("query IN ?", queries).Order("id ASC").Find(&segments).Error; err != nil {
		return nil, err
	}

	return segments, nil
}

// Delete removes a segment by ID. Join rows referencing it are removed by
// the ON DELETE CASCADE constraint.
func (r *AudienceSegmentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.AudienceSegment{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete segment %d: %w", id, err)
	}

	return nil
}

// ByFilter retrieves segments based on filter criteria
func (r *AudienceSegmentRepositoryImpl) ByFilter(ctx context.Context, filter models.AudienceSegmentFilter, orderBy string, limit, offset int) ([]*models.AudienceSegment, error) {
	db := r.getDB(ctx)

	var segments []*models.AudienceSegment
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

	if err := query.Find(&segments).Error; err != nil {
		return nil, err
	}

	return segments, nil
}

// Count returns the number of segments matching the filter
func (r *AudienceSegmentRepositoryImpl) Count(ctx context.Context, filter models.AudienceSegmentFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.AudienceSegment{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *AudienceSegmentRepositoryImpl) applyFilter(db *gorm.DB, filter models.AudienceSegmentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Query != nil {
		db = db.Where("query = ?", *filter.Query)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
