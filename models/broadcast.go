package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heraldhq/herald/utils"
)

// BroadcastStatus represents the status of a broadcast
type BroadcastStatus string

const (
	BroadcastStatusDraft    BroadcastStatus = "draft"
	BroadcastStatusDrafting BroadcastStatus = "drafting"
	BroadcastStatusSent     BroadcastStatus = "sent"
)

// String returns the string representation of the status
func (s BroadcastStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s BroadcastStatus) Valid() bool {
	switch s {
	case BroadcastStatusDraft, BroadcastStatusDrafting, BroadcastStatusSent:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for BroadcastStatus
func (s *BroadcastStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = BroadcastStatus(v)
	case []byte:
		*s = BroadcastStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BroadcastStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for BroadcastStatus
func (s BroadcastStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid BroadcastStatus: %s", s)
	}
	return string(s), nil
}

// Broadcast represents an outbound messaging campaign in the database
type Broadcast struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_broadcasts_uuid" json:"uuid"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Status    BroadcastStatus `gorm:"type:broadcast_status;not null;default:'draft';index:idx_broadcasts_status" json:"status"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_broadcasts_created_at" json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Segments []BroadcastSegment `gorm:"foreignKey:BroadcastID" json:"segments,omitempty"`
}

// TableName returns the table name for the model
func (Broadcast) TableName() string {
	return "broadcasts"
}

// BeforeCreate is called before creating a new record
func (b *Broadcast) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BroadcastStatusDraft
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (b *Broadcast) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// IsEditable checks if the broadcast can still be modified.
// A sent broadcast is immutable.
func (b *Broadcast) IsEditable() bool {
	return b.Status != BroadcastStatusSent
}

// CanTransitionTo checks if the broadcast can transition to the given status
func (b *Broadcast) CanTransitionTo(newStatus BroadcastStatus) bool {
	switch b.Status {
	case BroadcastStatusDraft:
		return newStatus == BroadcastStatusDrafting
	case BroadcastStatusDrafting:
		return newStatus == BroadcastStatusSent || newStatus == BroadcastStatusDraft
	default:
		return false
	}
}

// BroadcastFilter represents filter criteria for broadcasts
type BroadcastFilter struct {
	ID            *uint            `json:"id,omitempty"`
	UUID          *uuid.UUID       `json:"uuid,omitempty"`
	Name          *string          `json:"name,omitempty"`
	Status        *BroadcastStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time       `json:"created_after,omitempty"`
	CreatedBefore *time.Time       `json:"created_before,omitempty"`
}
