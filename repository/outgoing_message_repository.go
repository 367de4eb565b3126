package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/heraldhq/herald/models"
)

// OutgoingMessageRepositoryImpl implements the OutgoingMessageRepository interface
type OutgoingMessageRepositoryImpl struct {
	*BaseRepository[models.OutgoingMessage, models.OutgoingMessageFilter]
}

// NewOutgoingMessageRepository creates a new outgoing message repository
func NewOutgoingMessageRepository(db *gorm.DB) OutgoingMessageRepository {
	return &OutgoingMessageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OutgoingMessage, models.OutgoingMessageFilter](db),
	}
}

// PhoneNumbersOrderedByID returns distinct phone numbers from the message
// history ordered by row id. This is the evaluation target of audience
// segment queries.
func (r *OutgoingMessageRepositoryImpl) PhoneNumbersOrderedByID(ctx context.Context, descending bool, limit int) ([]string, error) {
	db := r.getDB(ctx)

	order := "MIN(id) ASC"
	if descending {
		order = "MIN(id) DESC"
	}

	query := db.Model(&models.OutgoingMessage{}).
		Select("phone_number").
		Group("phone_number").
		Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var numbers []string
	if err := query.Pluck("phone_number", &numbers).Error; err != nil {
		return nil, err
	}

	return numbers, nil
}

// ListProcessed returns the processed-message projection rows
func (r *OutgoingMessageRepositoryImpl) ListProcessed(ctx context.Context, limit, offset int) ([]*models.ProcessedMessage, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.OutgoingMessage{}).
		Select("id, conversation_id, phone_number, body, delivered_at").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ProcessedMessage
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// ByFilter retrieves outgoing messages based on filter criteria
func (r *OutgoingMessageRepositoryImpl) ByFilter(ctx context.Context, filter models.OutgoingMessageFilter, orderBy string, limit, offset int) ([]*models.OutgoingMessage, error) {
	db := r.getDB(ctx)

	var messages []*models.OutgoingMessage
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

	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

// Count returns the number of outgoing messages matching the filter
func (r *OutgoingMessageRepositoryImpl) Count(ctx context.Context, filter models.OutgoingMessageFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.OutgoingMessage{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *OutgoingMessageRepositoryImpl) applyFilter(db *gorm.DB, filter models.OutgoingMessageFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ConversationID != nil {
		db = db.Where("conversation_id = ?", *filter.ConversationID)
	}
	if filter.PhoneNumber != nil {
		db = db.Where("phone_number = ?", *filter.PhoneNumber)
	}
	if filter.DeliveredAfter != nil {
		db = db.Where("delivered_at >= ?", *filter.DeliveredAfter)
	}
	if filter.DeliveredBefore != nil {
		db = db.Where("delivered_at < ?", *filter.DeliveredBefore)
	}

	return db
}
