// Package session keeps browser sessions in redis: an opaque random
// token handed out as a cookie, mapped to the user id with a TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

type Store struct {
	client      *redisv9.Client
	ttl         time.Duration
	rememberTTL time.Duration
}

func NewStore(client *redisv9.Client, ttl, rememberTTL time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	return &Store{
		client:      client,
		ttl:         ttl,
		rememberTTL: rememberTTL,
	}
}

// Create issues a fresh token for userID. With remember set the session
// gets the long TTL ("remember me"), otherwise the short one.
func (s *Store) Create(ctx context.Context, userID uint, remember bool) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token failed: %w", err)
	}
	token := hex.EncodeToString(raw)

	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}
	if err := s.client.Set(ctx, s.key(token), strconv.FormatUint(uint64(userID), 10), ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session failed: %w", err)
	}
	return token, nil
}

// Resolve returns the user id bound to token, or 0 when the token is
// unknown or expired.
func (s *Store) Resolve(ctx context.Context, token string) (uint, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get session failed: %w", err)
	}

	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode session value failed: %w", err)
	}
	return uint(userID), nil
}

// Destroy removes the session. Unknown tokens are a no-op.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

func (s *Store) key(token string) string {
	return "session:token:" + token
}
