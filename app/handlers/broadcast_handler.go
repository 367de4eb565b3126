// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/app/middleware"
	businessflow "github.com/heraldhq/herald/business_flow"
)

// BroadcastHandlerInterface defines the contract for broadcast handlers
type BroadcastHandlerInterface interface {
	CreateBroadcast(c fiber.Ctx) error
	ListBroadcasts(c fiber.Ctx) error
	CreateSegmentGroup(c fiber.Ctx) error
	DraftBroadcast(c fiber.Ctx) error
}

// BroadcastHandler handles broadcast-related HTTP requests
type BroadcastHandler struct {
	broadcastFlow businessflow.BroadcastFlow
	validator     *validator.Validate
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(broadcastFlow businessflow.BroadcastFlow) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastFlow: broadcastFlow,
		validator:     validator.New(),
	}
}

func (h *BroadcastHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BroadcastHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateBroadcast handles the broadcast creation process
func (h *BroadcastHandler) CreateBroadcast(c fiber.Ctx) error {
	var req dto.CreateBroadcastRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.broadcastFlow.CreateBroadcast(createRequestContext(c, "/api/v1/broadcasts"), &req, metadata)
	if err != nil {
		log.Println("Broadcast creation failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Broadcast creation failed", err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Broadcast created successfully", result)
}

// ListBroadcasts returns every broadcast
func (h *BroadcastHandler) ListBroadcasts(c fiber.Ctx) error {
	result, err := h.broadcastFlow.ListBroadcasts(createRequestContext(c, "/api/v1/broadcasts"))
	if err != nil {
		log.Println("Broadcast listing failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Failed to list broadcasts", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Broadcasts retrieved successfully", result)
}

// CreateSegmentGroup generates the audience segment group for a broadcast
func (h *BroadcastHandler) CreateSegmentGroup(c fiber.Ctx) error {
	broadcastID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid broadcast ID", "INVALID_BROADCAST_ID", nil)
	}

	var req dto.CreateSegmentGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	req.BroadcastID = uint(broadcastID)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.broadcastFlow.CreateSegmentGroup(createRequestContext(c, "/api/v1/broadcasts/"+c.Params("id")+"/segments"), &req, metadata)
	if err != nil {
		if businessflow.IsBroadcastNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Broadcast not found", "BROADCAST_NOT_FOUND", nil)
		}
		if businessflow.IsBroadcastImmutable(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Broadcast has already been sent", "BROADCAST_IMMUTABLE", nil)
		}
		if businessflow.IsSegmentGroupInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment group parameters", "INVALID_SEGMENT_GROUP", nil)
		}

		log.Println("Segment group creation failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Segment group creation failed", err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Segment group created successfully", result)
}

// DraftBroadcast resolves recipients and drafts the broadcast content to
// each of them
func (h *BroadcastHandler) DraftBroadcast(c fiber.Ctx) error {
	broadcastID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid broadcast ID", "INVALID_BROADCAST_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.broadcastFlow.DraftBroadcast(createRequestContext(c, "/api/v1/broadcasts/"+c.Params("id")+"/draft"), uint(broadcastID), metadata)
	if err != nil {
		if businessflow.IsBroadcastNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Broadcast not found", "BROADCAST_NOT_FOUND", nil)
		}
		if businessflow.IsBroadcastImmutable(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Broadcast has already been sent", "BROADCAST_IMMUTABLE", nil)
		}
		if businessflow.IsBroadcastNoAudience(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Broadcast has no linked segments", "BROADCAST_NO_AUDIENCE", nil)
		}

		// Upstream delivery and storage failures are internal; the
		// central handler alerts the operator channel
		return businessflow.NewSystemError("broadcast drafting failed", err)
	}

	middleware.ObserveDraftedRecipients(result.Recipients)

	return h.SuccessResponse(c, fiber.StatusOK, "Broadcast drafted successfully", result)
}
