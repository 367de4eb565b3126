package businessflow

import (
	"context"

	"gorm.io/gorm"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/models"
	"github.com/heraldhq/herald/repository"
	"github.com/heraldhq/herald/utils"
)

// HistoryFlow handles the invoke history business logic
type HistoryFlow interface {
	RecordAndList(ctx context.Context, endpoint string, metadata *ClientMetadata) (*dto.ListInvokeHistoryResponse, error)
}

// HistoryFlowImpl implements the invoke history business flow
type HistoryFlowImpl struct {
	historyRepo repository.InvokeHistoryRepository
	db          *gorm.DB
}

// NewHistoryFlow creates a new history flow instance
func NewHistoryFlow(historyRepo repository.InvokeHistoryRepository, db *gorm.DB) HistoryFlow {
	return &HistoryFlowImpl{
		historyRepo: historyRepo,
		db:          db,
	}
}

// RecordAndList appends one row for the current call, then returns the
// full history including it. The list is therefore never empty on
// success, but an empty read is still a successful empty list.
func (s *HistoryFlowImpl) RecordAndList(ctx context.Context, endpoint string, metadata *ClientMetadata) (*dto.ListInvokeHistoryResponse, error) {
	row := &models.InvokeHistory{
		Endpoint:  endpoint,
		InvokedAt: utils.UTCNow(),
	}
	if metadata != nil {
		row.CallerIP = metadata.IP
	}

	if err := s.historyRepo.Save(ctx, row); err != nil {
		return nil, NewBusinessError("HISTORY_RECORD_FAILED", "Failed to record invocation", err)
	}

	rows, err := s.historyRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("HISTORY_LIST_FAILED", "Failed to list invoke history", err)
	}

	resp := &dto.ListInvokeHistoryResponse{
		Rows:  make([]dto.InvokeHistoryResponse, 0, len(rows)),
		Total: len(rows),
	}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, dto.InvokeHistoryResponse{
			ID:        r.ID,
			Endpoint:  r.Endpoint,
			CallerIP:  r.CallerIP,
			InvokedAt: r.InvokedAt,
		})
	}

	return resp, nil
}
