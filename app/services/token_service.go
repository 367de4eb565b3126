// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heraldhq/herald/utils"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenService issues and validates short-lived service JWTs exchanged
// for the service-role secret
type TokenService interface {
	GenerateServiceToken() (token string, expiresAt time.Time, err error)
	ValidateServiceToken(token string) (*ServiceTokenClaims, error)
}

// ServiceTokenClaims represents the claims in a service JWT
type ServiceTokenClaims struct {
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenID   string    `json:"jti"`
}

// TokenServiceImpl implements TokenService using HS256
type TokenServiceImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
	audience  string
}

const serviceRole = "service"

// NewTokenService creates a new token service
func NewTokenService(secretKey string, tokenTTL time.Duration, issuer, audience string) (TokenService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}

	return &TokenServiceImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
		issuer:    issuer,
		audience:  audience,
	}, nil
}

// GenerateServiceToken issues a new HS256 service token
func (s *TokenServiceImpl) GenerateServiceToken() (string, time.Time, error) {
	now := utils.UTCNow()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"role": serviceRole,
		"iss":  s.issuer,
		"aud":  s.audience,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"jti":  uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign service token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateServiceToken validates a service JWT and returns its claims
func (s *TokenServiceImpl) ValidateServiceToken(tokenString string) (*ServiceTokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	role, _ := claims["role"].(string)
	if role != serviceRole {
		return nil, ErrTokenInvalid
	}

	result := &ServiceTokenClaims{Role: role}
	if jti, ok := claims["jti"].(string); ok {
		result.TokenID = jti
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		result.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}

	return result, nil
}
