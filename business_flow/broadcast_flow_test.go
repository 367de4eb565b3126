package businessflow

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/app/services"
	"github.com/heraldhq/herald/models"
	"github.com/heraldhq/herald/repository"
	heraldtesting "github.com/heraldhq/herald/testing"
	"github.com/heraldhq/herald/utils"
)

func TestSegmentQueryRoundTrip(t *testing.T) {
	tests := []struct {
		descending bool
		index      int
		total      int
	}{
		{false, 1, 1},
		{false, 1, 4},
		{false, 4, 4},
		{true, 2, 8},
		{true, 64, 64},
	}

	for _, tt := range tests {
		query := SegmentQuery(tt.descending, tt.index, tt.total)

		descending, index, total, err := parseSegmentQuery(query)
		require.NoError(t, err, query)
		assert.Equal(t, tt.descending, descending)
		assert.Equal(t, tt.index, index)
		assert.Equal(t, tt.total, total)
	}
}

func TestSegmentQueryIsDeterministic(t *testing.T) {
	assert.Equal(t, SegmentQuery(true, 3, 8), SegmentQuery(true, 3, 8))
	assert.NotEqual(t, SegmentQuery(true, 3, 8), SegmentQuery(false, 3, 8))
	assert.NotEqual(t, SegmentQuery(true, 3, 8), SegmentQuery(true, 4, 8))
}

func TestParseSegmentQueryRejectsGarbage(t *testing.T) {
	for _, query := range []string{
		"",
		"select * from users",
		"select phone_number from outgoing_messages order by id sideways -- slice 1/4",
		"select phone_number from outgoing_messages order by id asc -- slice 0/4",
		"select phone_number from outgoing_messages order by id asc -- slice 5/4",
	} {
		_, _, _, err := parseSegmentQuery(query)
		assert.Error(t, err, query)
	}
}

// stubMessageRepo serves a fixed ordered number list
type stubMessageRepo struct {
	repository.OutgoingMessageRepository
	numbers []string
}

func (s *stubMessageRepo) PhoneNumbersOrderedByID(ctx context.Context, descending bool, limit int) ([]string, error) {
	out := append([]string(nil), s.numbers...)
	if descending {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	}
	return out, nil
}

func TestResolveSegmentRecipients(t *testing.T) {
	repo := &stubMessageRepo{numbers: []string{"+1", "+2", "+3", "+4", "+5", "+6", "+7", "+8"}}
	flow := &BroadcastFlowImpl{messageRepo: repo}

	t.Run("full ratio takes whole slice", func(t *testing.T) {
		segment := &models.AudienceSegment{Query: SegmentQuery(false, 1, 4)}
		got, err := flow.resolveSegmentRecipients(context.Background(), segment, 1.0)
		require.NoError(t, err)
		assert.Equal(t, []string{"+1", "+2"}, got)
	})

	t.Run("last slice", func(t *testing.T) {
		segment := &models.AudienceSegment{Query: SegmentQuery(false, 4, 4)}
		got, err := flow.resolveSegmentRecipients(context.Background(), segment, 1.0)
		require.NoError(t, err)
		assert.Equal(t, []string{"+7", "+8"}, got)
	})

	t.Run("small ratio still takes at least one", func(t *testing.T) {
		segment := &models.AudienceSegment{Query: SegmentQuery(false, 1, 4)}
		got, err := flow.resolveSegmentRecipients(context.Background(), segment, utils.SegmentJoinRatio)
		require.NoError(t, err)
		assert.Equal(t, []string{"+1"}, got)
	})

	t.Run("descending order", func(t *testing.T) {
		segment := &models.AudienceSegment{Query: SegmentQuery(true, 1, 4)}
		got, err := flow.resolveSegmentRecipients(context.Background(), segment, 1.0)
		require.NoError(t, err)
		assert.Equal(t, []string{"+8", "+7"}, got)
	})

	t.Run("slice past the end is empty", func(t *testing.T) {
		short := &stubMessageRepo{numbers: []string{"+1"}}
		shortFlow := &BroadcastFlowImpl{messageRepo: short}
		segment := &models.AudienceSegment{Query: SegmentQuery(false, 4, 4)}
		got, err := shortFlow.resolveSegmentRecipients(context.Background(), segment, 1.0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unparseable query fails", func(t *testing.T) {
		segment := &models.AudienceSegment{Query: "select 1"}
		_, err := flow.resolveSegmentRecipients(context.Background(), segment, 1.0)
		require.Error(t, err)
	})
}

// setupFlowTest spins up an isolated database or skips when none is
// reachable
func setupFlowTest(t *testing.T) (*heraldtesting.TestDB, *heraldtesting.TestFixtures) {
	t.Helper()

	tdb, err := heraldtesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })

	return tdb, heraldtesting.NewTestFixtures(tdb)
}

func newBroadcastFlowForTest(tdb *heraldtesting.TestDB, drafts services.DraftService) BroadcastFlow {
	return NewBroadcastFlow(
		repository.NewBroadcastRepository(tdb.DB),
		repository.NewAudienceSegmentRepository(tdb.DB),
		repository.NewBroadcastSegmentRepository(tdb.DB),
		repository.NewOutgoingMessageRepository(tdb.DB),
		drafts,
		tdb.DB,
		nil,
		nil,
	)
}

func TestCreateSegmentGroupIdempotent(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)

	broadcast, err := fixtures.CreateTestBroadcast("spring sale", "hello <%= name %>")
	require.NoError(t, err)

	flow := newBroadcastFlowForTest(tdb, services.NewMockDraftService())
	req := &dto.CreateSegmentGroupRequest{BroadcastID: broadcast.ID, Count: 4, Order: "asc"}

	first, err := flow.CreateSegmentGroup(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Created)
	assert.Equal(t, 0, first.Skipped)
	assert.Len(t, first.Segments, 4)

	// Repeating the exact request must not duplicate anything
	second, err := flow.CreateSegmentGroup(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 4, second.Skipped)
	assert.Len(t, second.Segments, 4)

	var segmentCount, joinCount int64
	require.NoError(t, tdb.DB.Model(&models.AudienceSegment{}).Count(&segmentCount).Error)
	require.NoError(t, tdb.DB.Model(&models.BroadcastSegment{}).Count(&joinCount).Error)
	assert.Equal(t, int64(4), segmentCount)
	assert.Equal(t, int64(4), joinCount)

	// Every join row carries the fixed ratio
	var joins []models.BroadcastSegment
	require.NoError(t, tdb.DB.Find(&joins).Error)
	for _, join := range joins {
		assert.InDelta(t, utils.SegmentJoinRatio, join.Ratio, 1e-9)
	}
}

func TestCreateSegmentGroupUnknownBroadcast(t *testing.T) {
	tdb, _ := setupFlowTest(t)

	flow := newBroadcastFlowForTest(tdb, services.NewMockDraftService())
	req := &dto.CreateSegmentGroupRequest{BroadcastID: 9999, Count: 2, Order: "asc"}

	_, err := flow.CreateSegmentGroup(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, IsBroadcastNotFound(err))
}

func TestCreateSegmentGroupBounds(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)

	broadcast, err := fixtures.CreateTestBroadcast("bounds", "content")
	require.NoError(t, err)

	flow := newBroadcastFlowForTest(tdb, services.NewMockDraftService())

	for _, req := range []*dto.CreateSegmentGroupRequest{
		{BroadcastID: broadcast.ID, Count: 0, Order: "asc"},
		{BroadcastID: broadcast.ID, Count: utils.MaxSegmentGroupSize + 1, Order: "asc"},
		{BroadcastID: broadcast.ID, Count: 2, Order: "sideways"},
	} {
		_, err := flow.CreateSegmentGroup(context.Background(), req, nil)
		assert.Error(t, err)
	}
}

func TestDraftBroadcastSendsAndMarksSent(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)

	_, err := fixtures.CreateTestOutgoingMessages(8)
	require.NoError(t, err)

	broadcast, err := fixtures.CreateTestBroadcast("launch", "we are live")
	require.NoError(t, err)

	drafts := services.NewMockDraftService()
	flow := newBroadcastFlowForTest(tdb, drafts)

	_, err = flow.CreateSegmentGroup(context.Background(), &dto.CreateSegmentGroupRequest{
		BroadcastID: broadcast.ID, Count: 4, Order: "asc",
	}, nil)
	require.NoError(t, err)

	result, err := flow.DraftBroadcast(context.Background(), broadcast.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BroadcastStatusSent.String(), result.Broadcast.Status)
	assert.Equal(t, len(drafts.SentTo), result.Recipients)
	assert.NotEmpty(t, drafts.SentTo)
	for _, body := range drafts.SentBodies {
		assert.Equal(t, "we are live", body)
	}

	// Drafting again must be refused: the broadcast is immutable now
	_, err = flow.DraftBroadcast(context.Background(), broadcast.ID, nil)
	require.Error(t, err)
	assert.True(t, IsBroadcastImmutable(err))
}

func TestDraftBroadcastWithoutSegments(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)

	broadcast, err := fixtures.CreateTestBroadcast("no audience", "content")
	require.NoError(t, err)

	flow := newBroadcastFlowForTest(tdb, services.NewMockDraftService())
	_, err = flow.DraftBroadcast(context.Background(), broadcast.ID, nil)
	require.Error(t, err)
	assert.True(t, IsBroadcastNoAudience(err))
}
