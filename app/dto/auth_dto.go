package dto

// TokenExchangeRequest is the request body for exchanging the
// service-role secret for a short-lived JWT
type TokenExchangeRequest struct {
	ServiceToken string `json:"service_token" validate:"required"`
}

// TokenExchangeResponse is the response body for a successful exchange
type TokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
