// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"crypto/subtle"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/app/services"
	businessflow "github.com/heraldhq/herald/business_flow"
	"github.com/heraldhq/herald/utils"
)

// AuthHandlerInterface defines the contract for auth handlers
type AuthHandlerInterface interface {
	ExchangeToken(c fiber.Ctx) error
}

// AuthHandler handles token exchange HTTP requests
type AuthHandler struct {
	tokenService     services.TokenService
	serviceRoleToken string
	validator        *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokenService services.TokenService, serviceRoleToken string) *AuthHandler {
	return &AuthHandler{
		tokenService:     tokenService,
		serviceRoleToken: serviceRoleToken,
		validator:        validator.New(),
	}
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ExchangeToken swaps the service-role secret for a short-lived JWT
func (h *AuthHandler) ExchangeToken(c fiber.Ctx) error {
	var req dto.TokenExchangeRequest
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

	if subtle.ConstantTimeCompare([]byte(req.ServiceToken), []byte(h.serviceRoleToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	token, expiresAt, err := h.tokenService.GenerateServiceToken()
	if err != nil {
		log.Println("Service token generation failed", err)
		return businessflow.NewRouteError(fiber.StatusInternalServerError, "Token generation failed", err)
	}

	expiresIn := int64(time.Until(expiresAt).Seconds())
	if expiresIn > utils.ServiceTokenTTLSeconds {
		expiresIn = utils.ServiceTokenTTLSeconds
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Token issued successfully", dto.TokenExchangeResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}
