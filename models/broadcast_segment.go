package models

// BroadcastSegment links one Broadcast to one AudienceSegment with a
// weighting ratio. The (broadcast_id, segment_id) pair is unique and
// inserts use conflict-skip semantics, so repeated group creation is
// idempotent. Join rows are removed when either parent is deleted.
type BroadcastSegment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	BroadcastID uint    `gorm:"not null;uniqueIndex:uk_broadcasts_segments_pair;index:idx_broadcasts_segments_broadcast_id" json:"broadcast_id"`
	SegmentID   uint    `gorm:"not null;uniqueIndex:uk_broadcasts_segments_pair;index:idx_broadcasts_segments_segment_id" json:"segment_id"`
	Ratio       float64 `gorm:"type:numeric(4,3);not null" json:"ratio"`

	// Relations
	Broadcast *Broadcast       `gorm:"foreignKey:BroadcastID;references:ID;constraint:OnDelete:CASCADE" json:"broadcast,omitempty"`
	Segment   *AudienceSegment `gorm:"foreignKey:SegmentID;references:ID;constraint:OnDelete:CASCADE" json:"segment,omitempty"`
}

// TableName returns the table name for the model
func (BroadcastSegment) TableName() string {
	return "broadcasts_segments"
}

// BroadcastSegmentFilter represents filter criteria for join rows
type BroadcastSegmentFilter struct {
	ID          *uint `json:"id,omitempty"`
	BroadcastID *uint `json:"broadcast_id,omitempty"`
	SegmentID   *uint `json:"segment_id,omitempty"`
}
