// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/heraldhq/herald/app/dto"
	businessflow "github.com/heraldhq/herald/business_flow"
)

// HistoryHandlerInterface defines the contract for history handlers
type HistoryHandlerInterface interface {
	GetHistory(c fiber.Ctx) error
}

// HistoryHandler handles invoke history HTTP requests
type HistoryHandler struct {
	historyFlow businessflow.HistoryFlow
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyFlow businessflow.HistoryFlow) *HistoryHandler {
	return &HistoryHandler{
		historyFlow: historyFlow,
	}
}

func (h *HistoryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *HistoryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetHistory records the current access and returns the full invoke
// history. An empty history is a 200 with an empty list.
func (h *HistoryHandler) GetHistory(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.historyFlow.RecordAndList(createRequestContext(c, "/api/v1/history"), "/api/v1/history", metadata)
	if err != nil {
		log.Println("History retrieval failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Failed to retrieve history", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "History retrieved successfully", result)
}
