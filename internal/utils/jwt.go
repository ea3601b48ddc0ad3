package utils

import (
	"errors"  // Error classification
	"fmt"     // Error formatting
	"strings" // Bearer prefix handling
	"time"    // Time for token expiration

	"finance_tracker/internal/domain" // Principal and user models

	"github.com/golang-jwt/jwt/v5" // JWT library
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and missing claims
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned once exp is not after the current time
	ErrTokenExpired = errors.New("token expired")
)

// MinSecretLength is the shortest HMAC key accepted by NewTokenService
const MinSecretLength = 32

// JWT Claims
type Claims struct {
	Username             string      `json:"username"` // Acting user
	Role                 domain.Role `json:"role"`     // CLIENT or ADMIN
	Enabled              bool        `json:"enabled"`  // Account state at issue time
	jwt.RegisteredClaims             // sub, iat, exp
}

// TokenService issues and verifies HS256 bearer tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service; the secret must be at least 32 bytes
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("jwt expiration must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source, used by tests
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue creates a signed token for a given user
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		Enabled:  user.Enabled,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(s.secret)                        // Sign the token with the secret
}

// Verify parses a token, checks the signature and expiry, and returns its claims
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Principal verifies a raw Authorization value, with or without the
// "Bearer " prefix, and returns the acting user
func (s *TokenService) Principal(rawHeader string) (domain.Principal, error) {
	claims, err := s.Verify(strings.TrimPrefix(rawHeader, "Bearer "))
	if err != nil {
		return domain.Principal{}, err
	}
	if !claims.Enabled {
		return domain.Principal{}, fmt.Errorf("%w: account disabled", ErrTokenInvalid)
	}
	return domain.Principal{Username: claims.Username, Role: claims.Role}, nil
}

// ExtractUsername returns the username claim of a raw Authorization value
func (s *TokenService) ExtractUsername(rawHeader string) (string, error) {
	claims, err := s.Verify(strings.TrimPrefix(rawHeader, "Bearer "))
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}
