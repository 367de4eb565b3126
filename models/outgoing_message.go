package models

import (
	"time"

	"github.com/lib/pq"
)

// OutgoingMessage is one delivered message in the provider conversation
// history. It is the source relation that audience segment queries select
// phone numbers from.
type OutgoingMessage struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID string         `gorm:"type:varchar(128);not null;index:idx_outgoing_messages_conversation_id" json:"conversation_id"`
	PhoneNumber    string         `gorm:"type:varchar(20);not null;index:idx_outgoing_messages_phone_number" json:"phone_number"`
	Body           string         `gorm:"type:text;not null" json:"body"`
	Labels         pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"labels"`
	DeliveredAt    time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_outgoing_messages_delivered_at" json:"delivered_at"`
}

// TableName returns the table name for the model
func (OutgoingMessage) TableName() string {
	return "outgoing_messages"
}

// ProcessedMessage is the read-side projection combining an outgoing
// message with its id and conversation reference.
type ProcessedMessage struct {
	ID             uint      `json:"id"`
	ConversationID string    `json:"conversation_id"`
	PhoneNumber    string    `json:"phone_number"`
	Body           string    `json:"body"`
	DeliveredAt    time.Time `json:"delivered_at"`
}

// OutgoingMessageFilter represents filter criteria for outgoing messages
type OutgoingMessageFilter struct {
	ID              *uint      `json:"id,omitempty"`
	ConversationID  *string    `json:"conversation_id,omitempty"`
	PhoneNumber     *string    `json:"phone_number,omitempty"`
	DeliveredAfter  *time.Time `json:"delivered_after,omitempty"`
	DeliveredBefore *time.Time `json:"delivered_before,omitempty"`
}
