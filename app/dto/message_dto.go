package dto

import "time"

// ProcessedMessageResponse is one processed message projection row
type ProcessedMessageResponse struct {
	ID             uint      `json:"id"`
	ConversationID string    `json:"conversation_id"`
	PhoneNumber    string    `json:"phone_number"`
	Body           string    `json:"body"`
	DeliveredAt    time.Time `json:"delivered_at"`
}

// ListProcessedMessagesResponse is the response body for the processed
// messages endpoint
type ListProcessedMessagesResponse struct {
	Messages []ProcessedMessageResponse `json:"messages"`
	Total    int                        `json:"total"`
}
