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

func testChatConfig(url string) *config.ChatConfig {
	return &config.ChatConfig{
		WebhookURL: url,
		Token:      "test-chat-token",
		Channel:    "#ops-alerts",
		Timeout:    5 * time.Second,
	}
}

func TestRenderAlertTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		details  map[string]string
		expected string
	}{
		{
			name:     "single placeholder",
			template: "Alert: <%= failureDetails %>",
			details:  map[string]string{"failureDetails": "db down"},
			expected: "Alert: db down",
		},
		{
			name:     "multiple placeholders",
			template: "<%= service %> failed: <%= reason %>",
			details:  map[string]string{"service": "drafts", "reason": "timeout"},
			expected: "drafts failed: timeout",
		},
		{
			name:     "unknown placeholder passes through verbatim",
			template: "Alert: <%= unknownToken %>",
			details:  map[string]string{"failureDetails": "ignored"},
			expected: "Alert: <%= unknownToken %>",
		},
		{
			name:     "whitespace variants",
			template: "<%=name%> and <%=  name  %>",
			details:  map[string]string{"name": "herald"},
			expected: "herald and herald",
		},
		{
			name:     "no placeholders",
			template: "plain text",
			details:  map[string]string{"a": "b"},
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderAlertTemplate(tt.template, tt.details))
		})
	}
}

func TestSendAlertPostsChannelAndText(t *testing.T) {
	var captured chatMessage
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(chatResponse{OK: true})
	}))
	defer server.Close()

	svc := NewChatService(testChatConfig(server.URL))
	err := svc.SendAlert(context.Background(), "Broadcast failed: <%= failureDetails %>", map[string]string{
		"failureDetails": "segment resolution error",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-chat-token", authHeader)
	assert.Equal(t, "#ops-alerts", captured.Channel)
	assert.Equal(t, "Broadcast failed: segment resolution error", captured.Text)
}

func TestSendAlertUsesDefaultTemplate(t *testing.T) {
	var captured chatMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(chatResponse{OK: true})
	}))
	defer server.Close()

	svc := NewChatService(testChatConfig(server.URL))
	require.NoError(t, svc.SendAlert(context.Background(), "", map[string]string{
		"failureDetails": "something broke",
	}))

	assert.Equal(t, "Herald alert: something broke", captured.Text)
}

func TestSendAlertRejectedByAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{OK: false, Error: "channel_not_found"})
	}))
	defer server.Close()

	svc := NewChatService(testChatConfig(server.URL))
	err := svc.SendAlert(context.Background(), "", map[string]string{"failureDetails": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestSendAlertNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewChatService(testChatConfig(server.URL))
	err := svc.SendAlert(context.Background(), "", map[string]string{"failureDetails": "x"})
	require.Error(t, err)
}
