// Package auth provides API authentication: an operator exchanges the
// shared access key for a short-lived JWT that guards mutating routes.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tillbook/internal/core/apperror"
)

// Config holds authentication settings.
type Config struct {
	// Secret signs issued tokens (HS256).
	Secret string

	// AccessKeyHash is the bcrypt hash of the operator access key.
	AccessKeyHash string

	// TokenTTL is the issued token lifetime.
	TokenTTL time.Duration
}

// Claims are the JWT claims carried by issued tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and validates API tokens.
type Service struct {
	secret  []byte
	keyHash []byte
	ttl     time.Duration
}

// NewService creates a new auth service.
func NewService(cfg Config) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		secret:  []byte(cfg.Secret),
		keyHash: []byte(cfg.AccessKeyHash),
		ttl:     ttl,
	}
}

// Login verifies the access key and issues a signed token.
func (s *Service) Login(accessKey string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(accessKey)); err != nil {
		return "", time.Time{}, apperror.NewUnauthorized("invalid access key")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperror.NewInternal(fmt.Errorf("sign token: %w", err))
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a bearer token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	return claims, nil
}
