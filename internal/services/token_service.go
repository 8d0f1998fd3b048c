package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codyseavey/textify/internal/errs"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// TokenService issues and verifies stateless HS256 session tokens.
// Tokens cannot be revoked individually; rotating the secret invalidates all of them.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service. An empty secret is rejected.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the user and returns it with its expiry.
func (s *TokenService) Issue(userID, username string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:   userID,
		Username: username,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
// Every failure wraps errs.ErrUnauthorized.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token is invalid", errs.ErrUnauthorized)
	}
	if claims.UserID == "" || claims.Username == "" {
		return nil, fmt.Errorf("%w: token is missing user claims", errs.ErrUnauthorized)
	}
	return claims, nil
}
