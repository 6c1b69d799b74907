// Package auth issues and validates the bearer tokens that carry a session.
// Login itself happens elsewhere; this service only trusts signed claims.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"maintledger/internal/core/security"
)

// JWTConfig configures HS256 signing.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig issues 12h tokens, about one maintenance shift.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "maintledger",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims are the registered claims plus the session's display name and role.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// GenerateAccessToken signs a token for the given session.
func (s *JWTService) GenerateAccessToken(session *security.Session) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.ActorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name: session.Name,
		Role: string(session.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *JWTService) key(*jwt.Token) (any, error) {
	return []byte(s.config.Secret), nil
}

// ValidateToken parses a signed token into a session.
func (s *JWTService) ValidateToken(tokenString string) (*security.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	role, err := security.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}
	return security.NewSession(claims.Subject, claims.Name, role), nil
}
