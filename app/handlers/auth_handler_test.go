// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/app/services"
)

func newAuthTestApp(t *testing.T) (*fiber.App, services.TokenService) {
	t.Helper()

	tokenService, err := services.NewTokenService("test-secret-key-for-jwt-signing-32-chars", 1*time.Hour, "herald", "herald-api")
	require.NoError(t, err)

	app := fiber.New()
	handler := NewAuthHandler(tokenService, "service-role-secret")
	app.Post("/api/v1/auth/token", handler.ExchangeToken)
	return app, tokenService
}

func TestExchangeTokenSuccess(t *testing.T) {
	app, tokenService := newAuthTestApp(t)

	payload := `{"service_token":"service-role-secret"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/token", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bearer", data["token_type"])

	accessToken, ok := data["access_token"].(string)
	require.True(t, ok)

	// The issued JWT must validate against the same service
	claims, err := tokenService.ValidateServiceToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "service", claims.Role)
}

func TestExchangeTokenWrongSecret(t *testing.T) {
	app, _ := newAuthTestApp(t)

	payload := `{"service_token":"wrong-secret"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/token", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Unauthorized", body["message"])
}

func TestExchangeTokenMissingField(t *testing.T) {
	app, _ := newAuthTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/token", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
