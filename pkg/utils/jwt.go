package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	accessSecret string
	accessExpiry time.Duration
)

// InitJWT sets the shared secret and lifetime of access tokens.
// Tokens are issued by the identity service; this service only verifies them.
func InitJWT(secret string, expiry time.Duration) {
	accessSecret = secret
	accessExpiry = expiry
}

// Claims represents JWT custom claims
type Claims struct {
	UserID         uint   `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID uint   `json:"organization_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an access token for a user acting for an organization
func GenerateAccessToken(userID uint, role string, organizationID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         userID,
		Role:           role,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(accessSecret))
}

// ValidateAccessToken validates and parses a JWT access token
func ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(accessSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
