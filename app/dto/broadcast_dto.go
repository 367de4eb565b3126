package dto

import "time"

// CreateBroadcastRequest is the request body for creating a broadcast
type CreateBroadcastRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// BroadcastResponse is one broadcast in API responses
type BroadcastResponse struct {
	ID        uint       `json:"id"`
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ListBroadcastsResponse is the response body for the broadcast listing endpoint
type ListBroadcastsResponse struct {
	Broadcasts []BroadcastResponse `json:"broadcasts"`
	Total      int                 `json:"total"`
}

// CreateSegmentGroupRequest is the request body for generating a segment
// group under a broadcast
type CreateSegmentGroupRequest struct {
	BroadcastID uint   `json:"-"`
	Count       int    `json:"count" validate:"required,gte=1,lte=64"`
	Order       string `json:"order" validate:"required,oneof=asc desc"`
}

// SegmentResponse is one audience segment in API responses
type SegmentResponse struct {
	ID          uint    `json:"id"`
	Query       string  `json:"query"`
	Description string  `json:"description"`
	Ratio       float64 `json:"ratio"`
}

// CreateSegmentGroupResponse is the response body for segment group creation
type CreateSegmentGroupResponse struct {
	BroadcastID uint              `json:"broadcast_id"`
	Segments    []SegmentResponse `json:"segments"`
	Created     int               `json:"created"`
	Skipped     int               `json:"skipped"`
}

// DraftBroadcastResponse is the response body for the broadcast draft endpoint
type DraftBroadcastResponse struct {
	Broadcast  BroadcastResponse `json:"broadcast"`
	Recipients int               `json:"recipients"`
	DraftedAt  time.Time         `json:"drafted_at"`
}
