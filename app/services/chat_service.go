// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/heraldhq/herald/config"
)

// ChatService posts operator alerts to the configured chat channel
type ChatService interface {
	SendAlert(ctx context.Context, template string, details map[string]string) error
}

// ChatServiceImpl implements ChatService
type ChatServiceImpl struct {
	config *config.ChatConfig
	client *http.Client
}

// DefaultAlertTemplate is used when callers pass an empty template
const DefaultAlertTemplate = "Herald alert: <%= failureDetails %>"

// placeholderPattern matches <%= name %> tokens in alert templates
var placeholderPattern = regexp.MustCompile(`<%=\s*(\w+)\s*%>`)

// chatMessage is the request payload for the chat API
type chatMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// chatResponse is the response payload from the chat API
type chatResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewChatService creates a new chat service instance
func NewChatService(cfg *config.ChatConfig) ChatService {
	return &ChatServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// RenderAlertTemplate substitutes <%= name %> placeholders from the detail
// map. Placeholders with no matching key pass through verbatim.
func RenderAlertTemplate(template string, details map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		if value, ok := details[name]; ok {
			return value
		}
		return token
	})
}

// SendAlert renders the template and posts it to the configured channel
func (s *ChatServiceImpl) SendAlert(ctx context.Context, template string, details map[string]string) error {
	if template == "" {
		template = DefaultAlertTemplate
	}
	text := RenderAlertTemplate(template, details)

	requestBody, err := json.Marshal(chatMessage{
		Channel: s.config.Channel,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode chat response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("chat API rejected message: %s", result.Error)
	}

	return nil
}

// MockChatService implements ChatService for testing
type MockChatService struct {
	Alerts     []string
	ShouldFail bool
}

// NewMockChatService creates a mock chat service
func NewMockChatService() *MockChatService {
	return &MockChatService{}
}

func (m *MockChatService) SendAlert(ctx context.Context, template string, details map[string]string) error {
	if m.ShouldFail {
		return fmt.Errorf("mock chat failure")
	}
	if template == "" {
		template = DefaultAlertTemplate
	}
	text := RenderAlertTemplate(template, details)
	m.Alerts = append(m.Alerts, text)
	log.Printf("Mock chat alert: %s", text)
	return nil
}
