// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald/app/dto"
	businessflow "github.com/heraldhq/herald/business_flow"
)

// stubUserFlow implements businessflow.UserFlow for handler tests
type stubUserFlow struct {
	users     []dto.UserResponse
	addErr    error
	updateErr error
	deleted   []uint
}

func (s *stubUserFlow) GetAll(ctx context.Context) (*dto.ListUsersResponse, error) {
	return &dto.ListUsersResponse{Users: s.users, Total: len(s.users)}, nil
}

func (s *stubUserFlow) Add(ctx context.Context, req *dto.UserRequest, metadata *businessflow.ClientMetadata) (*dto.UserResponse, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &dto.UserResponse{ID: 1, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}, nil
}

func (s *stubUserFlow) Update(ctx context.Context, req *dto.UserRequest, metadata *businessflow.ClientMetadata) (*dto.UserResponse, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &dto.UserResponse{ID: req.ID, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}, nil
}

func (s *stubUserFlow) Delete(ctx context.Context, id uint, metadata *businessflow.ClientMetadata) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newUserTestApp(flow businessflow.UserFlow) *fiber.App {
	app := fiber.New()
	handler := NewUserHandler(flow)
	app.Get("/api/v1/users", handler.ListUsers)
	app.Post("/api/v1/users", handler.CreateUser)
	app.Put("/api/v1/users/:id", handler.UpdateUser)
	app.Delete("/api/v1/users/:id", handler.DeleteUser)
	return app
}

func TestListUsersEmptyStoreIsSuccess(t *testing.T) {
	app := newUserTestApp(&stubUserFlow{})

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	users, ok := data["users"].([]any)
	require.True(t, ok, "users must be a list, not null")
	assert.Empty(t, users)
}

func TestCreateUserInvalidBody(t *testing.T) {
	app := newUserTestApp(&stubUserFlow{})

	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"first_name": `},
		{name: "missing required fields", payload: `{"first_name": "Ada"}`},
		{name: "bad email", payload: `{"first_name":"Ada","last_name":"Lovelace","email":"nope","phone":"+15551234567"}`},
		{name: "bad phone", payload: `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"not-a-phone"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewBufferString(tt.payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(raw), "Invalid user object")
		})
	}
}

func TestCreateUserSuccess(t *testing.T) {
	app := newUserTestApp(&stubUserFlow{})

	payload := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"+15551234567"}`
	req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateUserEmailTaken(t *testing.T) {
	flow := &stubUserFlow{addErr: businessflow.NewBusinessError("EMAIL_TAKEN", "Email already exists", businessflow.ErrEmailTaken)}
	app := newUserTestApp(flow)

	payload := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"+15551234567"}`
	req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdateUserNotFound(t *testing.T) {
	flow := &stubUserFlow{updateErr: businessflow.NewBusinessError("USER_NOT_FOUND", "User not found", businessflow.ErrUserNotFound)}
	app := newUserTestApp(flow)

	payload := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"+15551234567"}`
	req := httptest.NewRequest("PUT", "/api/v1/users/9999", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteUserInvalidID(t *testing.T) {
	flow := &stubUserFlow{}
	app := newUserTestApp(flow)

	req := httptest.NewRequest("DELETE", "/api/v1/users/not-a-number", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Invalid user ID")
	assert.Empty(t, flow.deleted)
}

func TestDeleteUserUnknownIDIsNoOp(t *testing.T) {
	flow := &stubUserFlow{}
	app := newUserTestApp(flow)

	req := httptest.NewRequest("DELETE", "/api/v1/users/424242", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []uint{424242}, flow.deleted)
}
