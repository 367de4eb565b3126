package models

import (
	"time"

	"github.com/heraldhq/herald/utils"
	"gorm.io/gorm"
)

// InvokeHistory records each read access to the message-history surface.
// Rows are append-only; nothing updates or deletes them.
type InvokeHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Endpoint  string    `gorm:"type:varchar(255);not null" json:"endpoint"`
	CallerIP  string    `gorm:"type:varchar(45)" json:"caller_ip"`
	InvokedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_invoke_history_invoked_at" json:"invoked_at"`
}

// TableName returns the table name for the model
func (InvokeHistory) TableName() string {
	return "invoke_history"
}

// BeforeCreate is called before creating a new record
func (h *InvokeHistory) BeforeCreate(tx *gorm.DB) error {
	if h.InvokedAt.IsZero() {
		h.InvokedAt = utils.UTCNow()
	}
	return nil
}

// InvokeHistoryFilter represents filter criteria for invoke history rows
type InvokeHistoryFilter struct {
	ID            *uint      `json:"id,omitempty"`
	Endpoint      *string    `json:"endpoint,omitempty"`
	InvokedAfter  *time.Time `json:"invoked_after,omitempty"`
	InvokedBefore *time.Time `json:"invoked_before,omitempty"`
}
