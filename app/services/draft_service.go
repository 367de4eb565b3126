// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/heraldhq/herald/config"
)

// DraftService creates draft messages through the external drafts API
type DraftService interface {
	SendDraft(ctx context.Context, phoneNumber, body string) error
	SendDrafts(ctx context.Context, phoneNumbers []string, body string) error
}

// DraftServiceImpl implements DraftService
type DraftServiceImpl struct {
	config *config.DraftsConfig
	client *http.Client
}

// DraftRecipient is one destination in the drafts API payload
type DraftRecipient struct {
	PhoneNumber string `json:"phone_number"`
}

// DraftSender is the sending identity in the drafts API payload
type DraftSender struct {
	PhoneNumber string `json:"phone_number"`
}

// DraftRequest represents the request payload for the drafts API.
// Send true asks the provider to deliver immediately instead of
// leaving the draft open.
type DraftRequest struct {
	Body      string           `json:"body"`
	ToFields  []DraftRecipient `json:"to_fields"`
	FromField *DraftSender     `json:"from_field,omitempty"`
	Send      bool             `json:"send"`
}

// NewDraftService creates a new draft service instance
func NewDraftService(cfg *config.DraftsConfig) DraftService {
	return &DraftServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BuildDraftRequest constructs the outbound payload for one recipient
func (s *DraftServiceImpl) BuildDraftRequest(phoneNumber, body string) *DraftRequest {
	req := &DraftRequest{
		Body:     body,
		ToFields: []DraftRecipient{{PhoneNumber: phoneNumber}},
		Send:     true,
	}
	if s.config.FromNumber != "" {
		req.FromField = &DraftSender{PhoneNumber: s.config.FromNumber}
	}
	return req
}

// SendDraft creates one immediately-sent draft for the given recipient
func (s *DraftServiceImpl) SendDraft(ctx context.Context, phoneNumber, body string) error {
	requestBody, err := json.Marshal(s.BuildDraftRequest(phoneNumber, body))
	if err != nil {
		return fmt.Errorf("failed to marshal draft request: %w", err)
	}

	backoff := s.config.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= s.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewBuffer(requestBody))
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send draft request: %w", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("drafts API returned status %d for %s", resp.StatusCode, phoneNumber)

		// Client errors won't heal on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr
		}
	}

	return lastErr
}

// SendDrafts creates one draft per recipient, stopping on the first failure
func (s *DraftServiceImpl) SendDrafts(ctx context.Context, phoneNumbers []string, body string) error {
	for _, number := range phoneNumbers {
		if err := s.SendDraft(ctx, number, body); err != nil {
			return err
		}
	}
	return nil
}

// MockDraftService implements DraftService for testing
type MockDraftService struct {
	SentTo     []string
	SentBodies []string
	ShouldFail bool
}

// NewMockDraftService creates a mock draft service
func NewMockDraftService() *MockDraftService {
	return &MockDraftService{}
}

func (m *MockDraftService) SendDraft(ctx context.Context, phoneNumber, body string) error {
	if m.ShouldFail {
		return fmt.Errorf("mock draft failure for %s", phoneNumber)
	}
	m.SentTo = append(m.SentTo, phoneNumber)
	m.SentBodies = append(m.SentBodies, body)
	log.Printf("Mock draft sent to %s: %s", phoneNumber, body)
	return nil
}

func (m *MockDraftService) SendDrafts(ctx context.Context, phoneNumbers []string, body string) error {
	for _, number := range phoneNumbers {
		if err := m.SendDraft(ctx, number, body); err != nil {
			return err
		}
	}
	return nil
}
