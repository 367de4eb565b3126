// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/heraldhq/herald/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id uint) error
}

// BroadcastRepository defines operations for broadcasts
type BroadcastRepository interface {
	Repository[models.Broadcast, models.BroadcastFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Broadcast, error)
	WithSegments(ctx context.Context, id uint) (*models.Broadcast, error)
	UpdateStatus(ctx context.Context, id uint, status models.BroadcastStatus) error
	Delete(ctx context.Context, id uint) error
}

// AudienceSegmentRepository defines operations for audience segments
type AudienceSegmentRepository interface {
	Repository[models.AudienceSegment, models.AudienceSegmentFilter]
	SaveSkipConflicts(ctx context.Context, segments []*models.AudienceSegment) error
	ByQueries(ctx context.Context, queries []string) ([]*models.AudienceSegment, error)
	Delete(ctx context.Context, id uint) error
}

// BroadcastSegmentRepository defines operations for broadcast/segment join rows
type BroadcastSegmentRepository interface {
	Repository[models.BroadcastSegment, models.BroadcastSegmentFilter]
	SaveSkipConflicts(ctx context.Context, rows []*models.BroadcastSegment) error
	ListByBroadcast(ctx context.Context, broadcastID uint) ([]*models.BroadcastSegment, error)
}

// InvokeHistoryRepository defines operations for the append-only invoke history
type InvokeHistoryRepository interface {
	Repository[models.InvokeHistory, models.InvokeHistoryFilter]
	ListAll(ctx context.Context) ([]*models.InvokeHistory, error)
}

// OutgoingMessageRepository defines operations for delivered message history
type OutgoingMessageRepository interface {
	Repository[models.OutgoingMessage, models.OutgoingMessageFilter]
	PhoneNumbersOrderedByID(ctx context.Context, descending bool, limit int) ([]string, error)
	ListProcessed(ctx context.Context, limit, offset int) ([]*models.ProcessedMessage, error)
}
