// Package testing provides test utilities and database setup for testing the broadcast service
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/heraldhq/herald/models"
	"github.com/heraldhq/herald/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a user with unique email and phone
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	user := &models.User{
		UUID:      uuid.New(),
		FirstName: "John",
		LastName:  "Doe",
		Email:     fmt.Sprintf("john.doe.%s@example.com", randomDigits),
		Phone:     fmt.Sprintf("+1555%s", randomDigits[:7]),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestBroadcast creates a draft broadcast
func (tf *TestFixtures) CreateTestBroadcast(name, content string) (*models.Broadcast, error) {
	broadcast := &models.Broadcast{
		UUID:    uuid.New(),
		Name:    name,
		Content: content,
		Status:  models.BroadcastStatusDraft,
	}

	if err := tf.DB.DB.Create(broadcast).Error; err != nil {
		return nil, fmt.Errorf("failed to create test broadcast: %w", err)
	}

	return broadcast, nil
}

// CreateTestOutgoingMessages seeds n delivered messages with sequential
// phone numbers so ordering assertions are deterministic
func (tf *TestFixtures) CreateTestOutgoingMessages(n int) ([]*models.OutgoingMessage, error) {
	messages := make([]*models.OutgoingMessage, 0, n)
	for i := 0; i < n; i++ {
		msg := &models.OutgoingMessage{
			ConversationID: fmt.Sprintf("conv-%04d", i+1),
			PhoneNumber:    fmt.Sprintf("+1555%07d", i+1),
			Body:           fmt.Sprintf("test message %d", i+1),
			Labels:         []string{"test"},
			DeliveredAt:    utils.UTCNow(),
		}
		if err := tf.DB.DB.Create(msg).Error; err != nil {
			return nil, fmt.Errorf("failed to create test message %d: %w", i+1, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// CreateTestSegmentWithJoin creates a segment plus its join row for a broadcast
func (tf *TestFixtures) CreateTestSegmentWithJoin(broadcastID uint, query string) (*models.AudienceSegment, error) {
	segment := &models.AudienceSegment{
		Query:       query,
		Description: "test segment",
	}
	if err := tf.DB.DB.Create(segment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test segment: %w", err)
	}

	join := &models.BroadcastSegment{
		BroadcastID: broadcastID,
		SegmentID:   segment.ID,
		Ratio:       utils.SegmentJoinRatio,
	}
	if err := tf.DB.DB.Create(join).Error; err != nil {
		return nil, fmt.Errorf("failed to create test join row: %w", err)
	}

	return segment, nil
}
