// Package businessflow contains the core business logic and use cases for broadcast workflows
package businessflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/app/services"
	"github.com/heraldhq/herald/config"
	"github.com/heraldhq/herald/models"
	"github.com/heraldhq/herald/repository"
	"github.com/heraldhq/herald/utils"
)

// BroadcastFlow handles the broadcast business logic
type BroadcastFlow interface {
	CreateBroadcast(ctx context.Context, req *dto.CreateBroadcastRequest, metadata *ClientMetadata) (*dto.BroadcastResponse, error)
	ListBroadcasts(ctx context.Context) (*dto.ListBroadcastsResponse, error)
	CreateSegmentGroup(ctx context.Context, req *dto.CreateSegmentGroupRequest, metadata *ClientMetadata) (*dto.CreateSegmentGroupResponse, error)
	DraftBroadcast(ctx context.Context, broadcastID uint, metadata *ClientMetadata) (*dto.DraftBroadcastResponse, error)
}

// BroadcastFlowImpl implements the broadcast business flow
type BroadcastFlowImpl struct {
	broadcastRepo repository.BroadcastRepository
	segmentRepo   repository.AudienceSegmentRepository
	joinRepo      repository.BroadcastSegmentRepository
	messageRepo   repository.OutgoingMessageRepository
	drafts        services.DraftService
	cacheConfig   *config.CacheConfig
	rc            *redis.Client
	db            *gorm.DB
}

// NewBroadcastFlow creates a new broadcast flow instance
func NewBroadcastFlow(
	broadcastRepo repository.BroadcastRepository,
	segmentRepo repository.AudienceSegmentRepository,
	joinRepo repository.BroadcastSegmentRepository,
	messageRepo repository.OutgoingMessageRepository,
	drafts services.DraftService,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) BroadcastFlow {
	return &BroadcastFlowImpl{
		broadcastRepo: broadcastRepo,
		segmentRepo:   segmentRepo,
		joinRepo:      joinRepo,
		messageRepo:   messageRepo,
		drafts:        drafts,
		cacheConfig:   cacheConfig,
		rc:            rc,
		db:            db,
	}
}

// segmentQueryPattern parses the stored selection expression back into its
// ordering direction and slice position.
var segmentQueryPattern = regexp.MustCompile(`order by id (asc|desc) -- slice (\d+)/(\d+)$`)

// SegmentQuery encodes the selection expression for slice index (1-based)
// of total over the message-history source. The text is the segment's
// canonical identity, so identical parameters always produce identical
// queries and repeated creation is absorbed by the unique index.
func SegmentQuery(descending bool, index, total int) string {
	dir := "asc"
	if descending {
		dir = "desc"
	}
	return fmt.Sprintf("select phone_number from outgoing_messages order by id %s -- slice %d/%d", dir, index, total)
}

// parseSegmentQuery extracts direction and slice position from a stored query
func parseSegmentQuery(query string) (descending bool, index, total int, err error) {
	m := segmentQueryPattern.FindStringSubmatch(query)
	if m == nil {
		return false, 0, 0, fmt.Errorf("unparseable segment query: %q", query)
	}
	index, _ = strconv.Atoi(m[2])
	total, _ = strconv.Atoi(m[3])
	if index < 1 || total < 1 || index > total {
		return false, 0, 0, fmt.Errorf("segment query slice out of range: %q", query)
	}
	return m[1] == "desc", index, total, nil
}

// CreateBroadcast persists a new draft broadcast
func (s *BroadcastFlowImpl) CreateBroadcast(ctx context.Context, req *dto.CreateBroadcastRequest, metadata *ClientMetadata) (*dto.BroadcastResponse, error) {
	broadcast := &models.Broadcast{
		Name:    req.Name,
		Content: req.Content,
		Status:  models.BroadcastStatusDraft,
	}

	if err := s.broadcastRepo.Save(ctx, broadcast); err != nil {
		return nil, NewBusinessError("BROADCAST_CREATION_FAILED", "Broadcast creation failed", err)
	}

	resp := toBroadcastResponse(broadcast)
	return &resp, nil
}

// ListBroadcasts returns every broadcast, newest first
func (s *BroadcastFlowImpl) ListBroadcasts(ctx context.Context) (*dto.ListBroadcastsResponse, error) {
	broadcasts, err := s.broadcastRepo.ByFilter(ctx, models.BroadcastFilter{}, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("BROADCAST_LIST_FAILED", "Failed to list broadcasts", err)
	}

	resp := &dto.ListBroadcastsResponse{
		Broadcasts: make([]dto.BroadcastResponse, 0, len(broadcasts)),
		Total:      len(broadcasts),
	}
	for _, b := range broadcasts {
		resp.Broadcasts = append(resp.Broadcasts, toBroadcastResponse(b))
	}

	return resp, nil
}

// CreateSegmentGroup generates the segment group for a broadcast: N
// audience segments whose queries slice the message history in the given
// direction, plus one join row per segment at the fixed ratio. Both
// phases run in one transaction so a failure between the segment insert
// and the join insert cannot leave orphan segments.
func (s *BroadcastFlowImpl) CreateSegmentGroup(ctx context.Context, req *dto.CreateSegmentGroupRequest, metadata *ClientMetadata) (*dto.CreateSegmentGroupResponse, error) {
	if err := s.validateSegmentGroupRequest(req); err != nil {
		return nil, NewBusinessError("SEGMENT_GROUP_VALIDATION_FAILED", "Segment group validation failed", err)
	}

	broadcast, err := s.broadcastRepo.ByID(ctx, req.BroadcastID)
	if err != nil {
		return nil, NewBusinessError("BROADCAST_LOOKUP_FAILED", "Failed to lookup broadcast", err)
	}
	if broadcast == nil {
		return nil, NewBusinessError("BROADCAST_NOT_FOUND", "Broadcast not found", ErrBroadcastNotFound)
	}
	if !broadcast.IsEditable() {
		return nil, NewBusinessError("BROADCAST_IMMUTABLE", "Broadcast has already been sent", ErrBroadcastImmutable)
	}

	descending := req.Order == "desc"

	queries := make([]string, 0, req.Count)
	segments := make([]*models.AudienceSegment, 0, req.Count)
	for i := 1; i <= req.Count; i++ {
		query := SegmentQuery(descending, i, req.Count)
		queries = append(queries, query)
		segments = append(segments, &models.AudienceSegment{
			Query:       query,
			Description: fmt.Sprintf("%s recipients, slice %d of %d ordered by id %s", broadcast.Name, i, req.Count, req.Order),
		})
	}

	var resolved []*models.AudienceSegment

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Phase 1: segments, skipping queries that already exist
		if err := s.segmentRepo.SaveSkipConflicts(txCtx, segments); err != nil {
			return fmt.Errorf("segment insert failed: %w", err)
		}

		// Conflict-skipped rows come back without IDs; resolve all of
		// them by query text before building join rows
		var err error
		resolved, err = s.segmentRepo.ByQueries(txCtx, queries)
		if err != nil {
			return fmt.Errorf("segment resolution failed: %w", err)
		}
		if len(resolved) != len(queries) {
			return fmt.Errorf("resolved %d of %d segments", len(resolved), len(queries))
		}

		// Phase 2: join rows, skipping already-linked pairs
		joins := make([]*models.BroadcastSegment, 0, len(resolved))
		for _, segment := range resolved {
			joins = append(joins, &models.BroadcastSegment{
				BroadcastID: broadcast.ID,
				SegmentID:   segment.ID,
				Ratio:       utils.SegmentJoinRatio,
			})
		}
		if err := s.joinRepo.SaveSkipConflicts(txCtx, joins); err != nil {
			return fmt.Errorf("join insert failed: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, NewBusinessError("SEGMENT_GROUP_CREATION_FAILED", "Segment group creation failed", err)
	}

	created := 0
	for _, segment := range segments {
		if segment.ID != 0 {
			created++
		}
	}

	resp := &dto.CreateSegmentGroupResponse{
		BroadcastID: broadcast.ID,
		Segments:    make([]dto.SegmentResponse, 0, len(resolved)),
		Created:     created,
		Skipped:     len(resolved) - created,
	}
	for _, segment := range resolved {
		resp.Segments = append(resp.Segments, dto.SegmentResponse{
			ID:          segment.ID,
			Query:       segment.Query,
			Description: segment.Description,
			Ratio:       utils.SegmentJoinRatio,
		})
	}

	return resp, nil
}

// DraftBroadcast resolves recipients from the broadcast's segments,
// creates an immediately-sent draft per recipient, and marks the
// broadcast sent.
func (s *BroadcastFlowImpl) DraftBroadcast(ctx context.Context, broadcastID uint, metadata *ClientMetadata) (*dto.DraftBroadcastResponse, error) {
	broadcast, err := s.broadcastRepo.ByID(ctx, broadcastID)
	if err != nil {
		return nil, NewBusinessError("BROADCAST_LOOKUP_FAILED", "Failed to lookup broadcast", err)
	}
	if broadcast == nil {
		return nil, NewBusinessError("BROADCAST_NOT_FOUND", "Broadcast not found", ErrBroadcastNotFound)
	}
	if !broadcast.IsEditable() {
		return nil, NewBusinessError("BROADCAST_IMMUTABLE", "Broadcast has already been sent", ErrBroadcastImmutable)
	}

	joins, err := s.joinRepo.ListByBroadcast(ctx, broadcast.ID)
	if err != nil {
		return nil, NewBusinessError("SEGMENT_LOOKUP_FAILED", "Failed to load broadcast segments", err)
	}
	if len(joins) == 0 {
		return nil, NewBusinessError("BROADCAST_NO_AUDIENCE", "Broadcast has no linked segments", ErrBroadcastNoAudience)
	}

	if err := s.broadcastRepo.UpdateStatus(ctx, broadcast.ID, models.BroadcastStatusDrafting); err != nil {
		return nil, NewBusinessError("BROADCAST_STATUS_UPDATE_FAILED", "Failed to update broadcast status", err)
	}

	seen := make(map[string]struct{})
	recipients := make([]string, 0)
	for _, join := range joins {
		if join.Segment == nil {
			continue
		}
		numbers, err := s.resolveSegmentRecipients(ctx, join.Segment, join.Ratio)
		if err != nil {
			return nil, NewBusinessError("SEGMENT_RESOLUTION_FAILED", "Failed to resolve segment recipients", err)
		}
		for _, number := range numbers {
			if _, ok := seen[number]; ok {
				continue
			}
			seen[number] = struct{}{}
			recipients = append(recipients, number)
		}
	}

	if err := s.drafts.SendDrafts(ctx, recipients, broadcast.Content); err != nil {
		// Leave the broadcast in drafting; the upstream failure surfaces
		// to the caller as a rejected operation
		return nil, NewBusinessError("DRAFT_DELIVERY_FAILED", "Draft delivery failed", err)
	}

	if err := s.broadcastRepo.UpdateStatus(ctx, broadcast.ID, models.BroadcastStatusSent); err != nil {
		return nil, NewBusinessError("BROADCAST_STATUS_UPDATE_FAILED", "Failed to update broadcast status", err)
	}
	broadcast.Status = models.BroadcastStatusSent

	return &dto.DraftBroadcastResponse{
		Broadcast:  toBroadcastResponse(broadcast),
		Recipients: len(recipients),
		DraftedAt:  utils.UTCNow(),
	}, nil
}

// resolveSegmentRecipients evaluates a segment query against the message
// history and applies the join ratio to the resulting slice.
func (s *BroadcastFlowImpl) resolveSegmentRecipients(ctx context.Context, segment *models.AudienceSegment, ratio float64) ([]string, error) {
	descending, index, total, err := parseSegmentQuery(segment.Query)
	if err != nil {
		return nil, err
	}

	numbers, err := s.cachedPhoneNumbers(ctx, segment.Query, descending)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, nil
	}

	// Partition the ordered history into total slices and take this
	// segment's share
	size := int(math.Ceil(float64(len(numbers)) / float64(total)))
	start := (index - 1) * size
	if start >= len(numbers) {
		return nil, nil
	}
	end := start + size
	if end > len(numbers) {
		end = len(numbers)
	}
	slice := numbers[start:end]

	// The ratio weights how much of the slice is selected
	take := int(math.Ceil(ratio * float64(len(slice))))
	if take < 1 {
		take = 1
	}
	if take > len(slice) {
		take = len(slice)
	}

	return slice[:take], nil
}

// cachedPhoneNumbers returns the ordered history numbers, going through
// Redis when caching is enabled
func (s *BroadcastFlowImpl) cachedPhoneNumbers(ctx context.Context, query string, descending bool) ([]string, error) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return s.messageRepo.PhoneNumbersOrderedByID(ctx, descending, 0)
	}

	sum := sha256.Sum256([]byte(query))
	key := s.cacheConfig.RedisPrefix + "segment:" + hex.EncodeToString(sum[:16])

	if cached, err := s.rc.Get(ctx, key).Result(); err == nil {
		var numbers []string
		if err := json.Unmarshal([]byte(cached), &numbers); err == nil {
			return numbers, nil
		}
	}

	numbers, err := s.messageRepo.PhoneNumbersOrderedByID(ctx, descending, 0)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(numbers); err == nil {
		if err := s.rc.Set(ctx, key, payload, s.cacheConfig.DefaultTTL).Err(); err != nil {
			log.Printf("segment cache write failed: %v", err)
		}
	}

	return numbers, nil
}

func (s *BroadcastFlowImpl) validateSegmentGroupRequest(req *dto.CreateSegmentGroupRequest) error {
	if req.Count < 1 {
		return ErrSegmentGroupEmpty
	}
	if req.Count > utils.MaxSegmentGroupSize {
		return ErrSegmentGroupTooLarge
	}
	if req.Order != "asc" && req.Order != "desc" {
		return ErrInvalidOrderDir
	}
	return nil
}

func toBroadcastResponse(b *models.Broadcast) dto.BroadcastResponse {
	return dto.BroadcastResponse{
		ID:        b.ID,
		UUID:      b.UUID.String(),
		Name:      b.Name,
		Content:   b.Content,
		Status:    b.Status.String(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
