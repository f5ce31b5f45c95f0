package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

// TokenStore remembers revoked JWT ids until the token would have expired.
type TokenStore interface {
	RevocationChecker
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	Close() error
}

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(host, password string) (TokenStore, error) {
	if host == "" {
		host = "localhost:6379"
	}
	if !strings.Contains(host, ":") {
		host = host + ":6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisTokenStore{client: client}, nil
}

func (r *redisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err()
}

func (r *redisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	n, err := r.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token in Redis: %w", err)
	}
	return n > 0, nil
}

func (r *redisTokenStore) Close() error {
	return r.client.Close()
}

func revokedTokenKey(tokenID string) string {
	return revokedTokenPrefix + tokenID
}
