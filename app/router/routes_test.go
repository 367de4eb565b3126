// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald/app/middleware"
	"github.com/heraldhq/herald/app/services"
	businessflow "github.com/heraldhq/herald/business_flow"
	"github.com/heraldhq/herald/config"
)

const testServiceToken = "test-service-role-token"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     30 * time.Second,
			BodyLimit:       4 * 1024 * 1024,
			AllowedOrigins:  []string{"https://herald.example.com"},
			GlobalRateLimit: 1000,
			RateLimitWindow: 1 * time.Minute,
		},
		Auth: config.AuthConfig{
			ServiceRoleToken: testServiceToken,
		},
	}
}

// okHandler satisfies every handler interface method with a bare 200
type okHandler struct{}

func (okHandler) ListUsers(c fiber.Ctx) error               { return c.SendStatus(fiber.StatusOK) }
func (okHandler) CreateUser(c fiber.Ctx) error              { return c.SendStatus(fiber.StatusOK) }
func (okHandler) UpdateUser(c fiber.Ctx) error              { return c.SendStatus(fiber.StatusOK) }
func (okHandler) DeleteUser(c fiber.Ctx) error              { return c.SendStatus(fiber.StatusOK) }
func (okHandler) CreateBroadcast(c fiber.Ctx) error         { return c.SendStatus(fiber.StatusOK) }
func (okHandler) ListBroadcasts(c fiber.Ctx) error          { return c.SendStatus(fiber.StatusOK) }
func (okHandler) CreateSegmentGroup(c fiber.Ctx) error      { return c.SendStatus(fiber.StatusOK) }
func (okHandler) DraftBroadcast(c fiber.Ctx) error          { return c.SendStatus(fiber.StatusOK) }
func (okHandler) GetHistory(c fiber.Ctx) error              { return c.SendStatus(fiber.StatusOK) }
func (okHandler) ListProcessedMessages(c fiber.Ctx) error   { return c.SendStatus(fiber.StatusOK) }
func (okHandler) ExportProcessedMessages(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
func (okHandler) ExchangeToken(c fiber.Ctx) error           { return c.SendStatus(fiber.StatusOK) }

func newTestRouter(chat services.ChatService) *FiberRouter {
	cfg := testConfig()
	h := okHandler{}
	authMW := middleware.NewAuthMiddleware(cfg.Auth.ServiceRoleToken, nil)

	r := NewFiberRouter(cfg, h, h, h, h, h, authMW, chat)
	fr := r.(*FiberRouter)
	fr.SetupRoutes()
	return fr
}

func TestHealthCheckUnauthenticated(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	resp, err := r.GetApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	r := newTestRouter(nil)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/users"},
		{"POST", "/api/v1/users"},
		{"GET", "/api/v1/broadcasts"},
		{"GET", "/api/v1/history"},
		{"GET", "/api/v1/messages/processed"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			req := httptest.NewRequest(p.method, p.path, nil)
			resp, err := r.GetApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Unauthorized", body["message"])
		})
	}
}

func TestProtectedRoutesRejectWrongToken(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	resp, err := r.GetApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesAcceptServiceToken(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+testServiceToken)
	resp, err := r.GetApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUnknownRouteReturns404(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	req.Header.Set("Authorization", "Bearer "+testServiceToken)
	resp, err := r.GetApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestErrorHandlerRouteErrorKeepsStatus(t *testing.T) {
	chat := services.NewMockChatService()
	cfg := testConfig()
	authMW := middleware.NewAuthMiddleware(cfg.Auth.ServiceRoleToken, nil)
	r := NewFiberRouter(cfg, okHandler{}, okHandler{}, okHandler{}, okHandler{}, okHandler{}, authMW, chat).(*FiberRouter)

	app := r.GetApp()
	app.Get("/boom", func(c fiber.Ctx) error {
		return businessflow.NewRouteError(fiber.StatusBadGateway, "upstream unavailable", errors.New("dial tcp: refused"))
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "upstream unavailable", body["error"])
}

func TestErrorHandlerSystemErrorHidesDetails(t *testing.T) {
	chat := services.NewMockChatService()
	cfg := testConfig()
	authMW := middleware.NewAuthMiddleware(cfg.Auth.ServiceRoleToken, nil)
	r := NewFiberRouter(cfg, okHandler{}, okHandler{}, okHandler{}, okHandler{}, okHandler{}, authMW, chat).(*FiberRouter)

	app := r.GetApp()
	app.Get("/internal", func(c fiber.Ctx) error {
		return businessflow.NewSystemError("draft delivery failed", errors.New("provider 500"))
	})

	req := httptest.NewRequest("GET", "/internal", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, raw, "system errors must not leak details to the client")

	// The operator channel hears about it instead
	require.Len(t, chat.Alerts, 1)
	assert.Contains(t, chat.Alerts[0], "draft delivery failed")
}

func TestErrorHandlerDefaultRejectsWith400(t *testing.T) {
	chat := services.NewMockChatService()
	cfg := testConfig()
	authMW := middleware.NewAuthMiddleware(cfg.Auth.ServiceRoleToken, nil)
	r := NewFiberRouter(cfg, okHandler{}, okHandler{}, okHandler{}, okHandler{}, okHandler{}, authMW, chat).(*FiberRouter)

	app := r.GetApp()
	app.Get("/plain", func(c fiber.Ctx) error {
		return errors.New("malformed selection expression")
	})

	req := httptest.NewRequest("GET", "/plain", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "malformed selection expression", body["error"])
}
