package dto

import "time"

// InvokeHistoryResponse is one invoke history row in API responses
type InvokeHistoryResponse struct {
	ID        uint      `json:"id"`
	Endpoint  string    `json:"endpoint"`
	CallerIP  string    `json:"caller_ip,omitempty"`
	InvokedAt time.Time `json:"invoked_at"`
}

// ListInvokeHistoryResponse is the response body for the history endpoint.
// An empty Rows slice is a successful result, not an error.
type ListInvokeHistoryResponse struct {
	Rows  []InvokeHistoryResponse `json:"rows"`
	Total int                     `json:"total"`
}
