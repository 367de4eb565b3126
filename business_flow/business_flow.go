// Package businessflow contains the core business logic and use cases for broadcast workflows
package businessflow

// ClientMetadata carries request-scoped client information into flows
type ClientMetadata struct {
	IP        string
	UserAgent string
}

// NewClientMetadata creates client metadata from request attributes
func NewClientMetadata(ip, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IP:        ip,
		UserAgent: userAgent,
	}
}
