package models

import (
	"time"

	"github.com/heraldhq/herald/utils"
	"gorm.io/gorm"
)

// AudienceSegment represents a query-defined subset of message-history
// recipients. The query text is the canonical identity of a segment:
// repeated generation of the same slice produces the same query and is
// absorbed by the unique index (conflict-skip insert).
type AudienceSegment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Query       string    `gorm:"type:text;not null;uniqueIndex:uk_audience_segments_query" json:"query"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Broadcasts []BroadcastSegment `gorm:"foreignKey:SegmentID" json:"broadcasts,omitempty"`
}

// TableName returns the table name for the model
func (AudienceSegment) TableName() string {
	return "audience_segments"
}

// BeforeCreate is called before creating a new record
func (s *AudienceSegment) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// AudienceSegmentFilter represents filter criteria for audience segments
type AudienceSegmentFilter struct {
	ID            *uint      `json:"id,omitempty"`
	Query         *string    `json:"query,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
