package dto

import "time"

// UserRequest is the request body for creating or updating a user
type UserRequest struct {
	ID        uint   `json:"id,omitempty"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,e164"`
}

// UserResponse is one user in API responses
type UserResponse struct {
	ID        uint       `json:"id"`
	UUID      string     `json:"uuid"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ListUsersResponse is the response body for the user listing endpoint
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}
