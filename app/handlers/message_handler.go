// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/heraldhq/herald/app/dto"
	businessflow "github.com/heraldhq/herald/business_flow"
)

// MessageHandlerInterface defines the contract for processed message handlers
type MessageHandlerInterface interface {
	ListProcessedMessages(c fiber.Ctx) error
	ExportProcessedMessages(c fiber.Ctx) error
}

// MessageHandler handles processed message HTTP requests
type MessageHandler struct {
	messageFlow businessflow.MessageFlow
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageFlow businessflow.MessageFlow) *MessageHandler {
	return &MessageHandler{
		messageFlow: messageFlow,
	}
}

func (h *MessageHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *MessageHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListProcessedMessages returns the processed message projection
func (h *MessageHandler) ListProcessedMessages(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	result, err := h.messageFlow.ListProcessed(createRequestContext(c, "/api/v1/messages/processed"), limit, offset)
	if err != nil {
		log.Println("Processed message listing failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Failed to list processed messages", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Processed messages retrieved successfully", result)
}

// ExportProcessedMessages streams the processed message projection as an
// xlsx workbook
func (h *MessageHandler) ExportProcessedMessages(c fiber.Ctx) error {
	payload, filename, err := h.messageFlow.ExportProcessed(createRequestContext(c, "/api/v1/messages/export"))
	if err != nil {
		log.Println("Processed message export failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Failed to export processed messages", err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(payload)
}
