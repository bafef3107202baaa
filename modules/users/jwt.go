package users

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token is malformed, carries a
	// bad signature, lacks a subject, or its subject cannot be resolved
	// to a stored user. All of these look identical to the client.
	ErrInvalidToken = errors.New("could not validate credentials")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenConfig holds token signing configuration.
type TokenConfig struct {
	SecretKey    string
	AccessExpiry time.Duration
	Issuer       string
}

// DefaultTokenConfig returns a default token configuration.
// In production the secret key must come from the environment.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		SecretKey:    "your-secret-key-change-in-production",
		AccessExpiry: 30 * time.Minute,
		Issuer:       "user-crud-demo",
	}
}

// TokenManager issues and validates signed bearer tokens. The signing
// secret is injected at construction and read-only afterwards.
type TokenManager struct {
	config TokenConfig
}

// NewTokenManager creates a TokenManager with the given configuration.
func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{config: config}
}

// Generate issues an HS256-signed token whose subject is the user's
// email, expiring AccessExpiry from now.
func (m *TokenManager) Generate(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    m.config.Issuer,
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Validate decodes the token, verifies its signature and expiry, and
// returns the claims. The subject claim must be present.
func (m *TokenManager) Validate(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
