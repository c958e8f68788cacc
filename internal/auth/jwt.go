package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the claims carried by the session cookie.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenSigner signs session identifiers into HS256 JWTs for the session cookie.
type TokenSigner struct {
	key    []byte
	issuer string
}

// NewTokenSigner creates a TokenSigner using the given secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{key: []byte(secret), issuer: "ender-crm"}
}

// Encode creates a signed token carrying the session ID.
func (s *TokenSigner) Encode(sessionID string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Decode parses and validates a token string, returning the session ID it carries.
func (s *TokenSigner) Decode(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return "", errors.New("session token without id")
	}
	return claims.ID, nil
}
