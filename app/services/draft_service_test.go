// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald/config"
)

func testDraftsConfig(endpoint string) *config.DraftsConfig {
	return &config.DraftsConfig{
		Endpoint:     endpoint,
		APIToken:     "test-api-token",
		FromNumber:   "+15550000000",
		RetryCount:   2,
		RetryBackoff: 1 * time.Millisecond,
		Timeout:      5 * time.Second,
	}
}

func TestSendDraftPayload(t *testing.T) {
	var captured DraftRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewDraftService(testDraftsConfig(server.URL))
	err := svc.SendDraft(context.Background(), "+15551234567", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-token", authHeader)
	assert.Equal(t, "hello there", captured.Body)
	require.Len(t, captured.ToFields, 1)
	assert.Equal(t, "+15551234567", captured.ToFields[0].PhoneNumber)
	assert.True(t, captured.Send)
	require.NotNil(t, captured.FromField)
	assert.Equal(t, "+15550000000", captured.FromField.PhoneNumber)
}

func TestSendDraftPayloadFieldNames(t *testing.T) {
	var raw map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewDraftService(testDraftsConfig(server.URL))
	require.NoError(t, svc.SendDraft(context.Background(), "+15551234567", "body text"))

	// Wire names matter to the provider
	toFields, ok := raw["to_fields"].([]any)
	require.True(t, ok, "to_fields missing or wrong type")
	require.Len(t, toFields, 1)
	first, ok := toFields[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+15551234567", first["phone_number"])
	assert.Equal(t, "body text", raw["body"])
	assert.Equal(t, true, raw["send"])
}

func TestSendDraftRetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewDraftService(testDraftsConfig(server.URL))
	err := svc.SendDraft(context.Background(), "+15551234567", "retry me")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestSendDraftDoesNotRetryClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	svc := NewDraftService(testDraftsConfig(server.URL))
	err := svc.SendDraft(context.Background(), "+15551234567", "bad payload")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSendDraftExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewDraftService(testDraftsConfig(server.URL))
	err := svc.SendDraft(context.Background(), "+15551234567", "never works")
	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial attempt + RetryCount
}

func TestSendDraftsStopsOnFirstFailure(t *testing.T) {
	mock := NewMockDraftService()
	require.NoError(t, mock.SendDrafts(context.Background(), []string{"+1", "+2"}, "hi"))
	assert.Equal(t, []string{"+1", "+2"}, mock.SentTo)

	failing := NewMockDraftService()
	failing.ShouldFail = true
	err := failing.SendDrafts(context.Background(), []string{"+1", "+2"}, "hi")
	require.Error(t, err)
	assert.Empty(t, failing.SentTo)
}
