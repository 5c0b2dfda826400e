package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, malformed
// token, wrong secret, expiry. Callers must not tell a client which one it
// was; the wrapped cause is for logs.
var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies access and refresh tokens. The two secrets are
// independent so a leaked access secret cannot mint refresh tokens, and vice
// versa.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwtlib.RegisteredClaims
}

func New(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *Service) GenerateAccessToken(userID int64, username string) (string, error) {
	return s.generate(s.accessSecret, s.accessTTL, userID, username)
}

// GenerateRefreshToken embeds only the user id; the caller persists a hash of
// the result so the token can be revoked before it expires.
func (s *Service) GenerateRefreshToken(userID int64) (string, error) {
	return s.generate(s.refreshSecret, s.refreshTTL, userID, "")
}

func (s *Service) ValidateAccessToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, s.accessSecret)
}

func (s *Service) ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, s.refreshSecret)
}

func (s *Service) generate(secret []byte, ttl time.Duration, userID int64, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *Service) validate(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
