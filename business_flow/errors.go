// Package businessflow contains the core business logic and use cases for broadcast workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrEmailTaken      = errors.New("email already exists")
	ErrInvalidUserData = errors.New("invalid user object")

	// Broadcast-related errors
	ErrBroadcastNotFound   = errors.New("broadcast not found")
	ErrBroadcastImmutable  = errors.New("broadcast has already been sent")
	ErrBroadcastNoAudience = errors.New("broadcast has no linked segments")

	// Segment-related errors
	ErrSegmentGroupTooLarge = errors.New("segment group size exceeds the maximum")
	ErrSegmentGroupEmpty    = errors.New("segment group size must be at least 1")
	ErrInvalidOrderDir      = errors.New("order direction must be asc or desc")
)

// RouteError is an operation-specific failure carrying an explicit HTTP
// status code; the central error handler propagates the code verbatim.
type RouteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RouteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// NewRouteError creates a route error with an explicit status code
func NewRouteError(status int, message string, err error) *RouteError {
	return &RouteError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// AsRouteError unwraps err into a *RouteError if one is in the chain
func AsRouteError(err error) (*RouteError, bool) {
	var routeErr *RouteError
	if errors.As(err, &routeErr) {
		return routeErr, true
	}
	return nil, false
}

// SystemError is an internal failure hidden from the client (answered
// with 204) and forwarded to the operator chat channel.
type SystemError struct {
	Message string
	Err     error
}

func (e *SystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// NewSystemError creates a system error
func NewSystemError(message string, err error) *SystemError {
	return &SystemError{
		Message: message,
		Err:     err,
	}
}

// AsSystemError unwraps err into a *SystemError if one is in the chain
func AsSystemError(err error) (*SystemError, bool) {
	var sysErr *SystemError
	if errors.As(err, &sysErr) {
		return sysErr, true
	}
	return nil, false
}

// BusinessError wraps a domain failure with a stable code
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsEmailTaken(err error) bool {
	return errors.Is(err, ErrEmailTaken)
}

func IsBroadcastNotFound(err error) bool {
	return errors.Is(err, ErrBroadcastNotFound)
}

func IsBroadcastImmutable(err error) bool {
	return errors.Is(err, ErrBroadcastImmutable)
}

func IsBroadcastNoAudience(err error) bool {
	return errors.Is(err, ErrBroadcastNoAudience)
}

func IsSegmentGroupInvalid(err error) bool {
	return errors.Is(err, ErrSegmentGroupTooLarge) ||
		errors.Is(err, ErrSegmentGroupEmpty) ||
		errors.Is(err, ErrInvalidOrderDir)
}
