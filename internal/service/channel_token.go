package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChannelTokenService mints and verifies the HS256 tokens the delivering
// channel uses to authenticate against the engine. There is a single trusted
// channel; this is authentication only, not authorization.
type ChannelTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

var ErrChannelTokenInvalid = errors.New("channel token invalid")

type channelClaims struct {
	Channel string `json:"chn"`
	jwt.RegisteredClaims
}

func NewChannelTokenService(secret string, ttl time.Duration) *ChannelTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ChannelTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "psyscreen",
	}
}

// Enabled reports whether a secret is configured; without one the middleware
// lets requests through.
func (s *ChannelTokenService) Enabled() bool {
	return len(s.secret) > 0
}

// Mint issues a token for the named channel.
func (s *ChannelTokenService) Mint(channel string) (string, error) {
	if !s.Enabled() {
		return "", ErrChannelTokenInvalid
	}
	now := time.Now().UTC()
	claims := channelClaims{
		Channel: channel,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry, and issuer; it returns the channel name.
func (s *ChannelTokenService) Verify(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !s.Enabled() || raw == "" {
		return "", ErrChannelTokenInvalid
	}
	claims := &channelClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrChannelTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrChannelTokenInvalid
	}
	if claims.Issuer != s.issuer {
		return "", ErrChannelTokenInvalid
	}
	return claims.Channel, nil
}
