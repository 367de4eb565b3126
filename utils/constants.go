package utils

// Token time constants
const (
	// ServiceTokenTTLSeconds caps the advertised lifetime of exchanged
	// service JWTs
	ServiceTokenTTLSeconds = 3600
)

// Segment constants
const (
	// SegmentJoinRatio is the fixed weight assigned to every generated
	// broadcast/segment join row
	SegmentJoinRatio = 0.125

	// MaxSegmentGroupSize bounds the repetition count of a single
	// segment-group creation request
	MaxSegmentGroupSize = 64
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
