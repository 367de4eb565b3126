// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/heraldhq/herald/app/dto"
	businessflow "github.com/heraldhq/herald/business_flow"
	"github.com/heraldhq/herald/utils"
)

// UserHandlerInterface defines the contract for user handlers
type UserHandlerInterface interface {
	ListUsers(c fiber.Ctx) error
	CreateUser(c fiber.Ctx) error
	UpdateUser(c fiber.Ctx) error
	DeleteUser(c fiber.Ctx) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userFlow  businessflow.UserFlow
	validator *validator.Validate
}

// createRequestContext builds a request-scoped context carrying client
// metadata for flows; the cancel func travels with it so flow code can
// release the timeout early.
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

// NewUserHandler creates a new user handler
func NewUserHandler(userFlow businessflow.UserFlow) *UserHandler {
	return &UserHandler{
		userFlow:  userFlow,
		validator: validator.New(),
	}
}

func (h *UserHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *UserHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListUsers returns every stored user. An empty store is a 200 with an
// empty list.
func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	result, err := h.userFlow.GetAll(createRequestContext(c, "/api/v1/users"))
	if err != nil {
		log.Println("User listing failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Failed to list users", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Users retrieved successfully", result)
}

// CreateUser handles the user creation process
func (h *UserHandler) CreateUser(c fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user object", "INVALID_USER_OBJECT", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user object", "INVALID_USER_OBJECT", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.userFlow.Add(createRequestContext(c, "/api/v1/users"), &req, metadata)
	if err != nil {
		if businessflow.IsEmailTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_TAKEN", nil)
		}

		log.Println("User creation failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "User creation failed", err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "User created successfully", result)
}

// UpdateUser handles the user update process
func (h *UserHandler) UpdateUser(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", "INVALID_USER_ID", nil)
	}

	var req dto.UserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user object", "INVALID_USER_OBJECT", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user object", "INVALID_USER_OBJECT", validationErrors)
	}

	req.ID = uint(id)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.userFlow.Update(createRequestContext(c, "/api/v1/users/"+c.Params("id")), &req, metadata)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsEmailTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_TAKEN", nil)
		}

		log.Println("User update failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "User update failed", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User updated successfully", result)
}

// DeleteUser handles the user deletion process. Deleting an unknown id
// succeeds without effect.
func (h *UserHandler) DeleteUser(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", "INVALID_USER_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.userFlow.Delete(createRequestContext(c, "/api/v1/users/"+c.Params("id")), uint(id), metadata); err != nil {
		log.Println("User deletion failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "User deletion failed", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User deleted successfully", nil)
}
