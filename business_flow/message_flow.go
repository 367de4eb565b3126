package businessflow

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/repository"
	"github.com/heraldhq/herald/utils"
)

// MessageFlow handles the processed message business logic
type MessageFlow interface {
	ListProcessed(ctx context.Context, limit, offset int) (*dto.ListProcessedMessagesResponse, error)
	ExportProcessed(ctx context.Context) ([]byte, string, error)
}

// MessageFlowImpl implements the processed message business flow
type MessageFlowImpl struct {
	messageRepo repository.OutgoingMessageRepository
	db          *gorm.DB
}

// NewMessageFlow creates a new message flow instance
func NewMessageFlow(messageRepo repository.OutgoingMessageRepository, db *gorm.DB) MessageFlow {
	return &MessageFlowImpl{
		messageRepo: messageRepo,
		db:          db,
	}
}

// ListProcessed returns the processed message projection in insertion order
func (s *MessageFlowImpl) ListProcessed(ctx context.Context, limit, offset int) (*dto.ListProcessedMessagesResponse, error) {
	rows, err := s.messageRepo.ListProcessed(ctx, limit, offset)
	if err != nil {
		return nil, NewBusinessError("MESSAGE_LIST_FAILED", "Failed to list processed messages", err)
	}

	resp := &dto.ListProcessedMessagesResponse{
		Messages: make([]dto.ProcessedMessageResponse, 0, len(rows)),
		Total:    len(rows),
	}
	for _, m := range rows {
		resp.Messages = append(resp.Messages, dto.ProcessedMessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			PhoneNumber:    m.PhoneNumber,
			Body:           m.Body,
			DeliveredAt:    m.DeliveredAt,
		})
	}

	return resp, nil
}

// ExportProcessed builds an xlsx workbook of the processed message
// projection and returns its bytes along with a suggested filename.
func (s *MessageFlowImpl) ExportProcessed(ctx context.Context) ([]byte, string, error) {
	rows, err := s.messageRepo.ListProcessed(ctx, 0, 0)
	if err != nil {
		return nil, "", NewBusinessError("MESSAGE_EXPORT_FAILED", "Failed to load messages for export", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Processed Messages"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", NewBusinessError("MESSAGE_EXPORT_FAILED", "Failed to build export workbook", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Conversation ID", "Phone Number", "Body", "Delivered At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, m := range rows {
		rowNum := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), m.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), m.ConversationID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), m.PhoneNumber)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), m.Body)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), m.DeliveredAt.Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", NewBusinessError("MESSAGE_EXPORT_FAILED", "Failed to serialize export workbook", err)
	}

	filename := fmt.Sprintf("processed-messages-%s.xlsx", utils.UTCNow().Format("20060102-150405"))
	return buf.Bytes(), filename, nil
}
