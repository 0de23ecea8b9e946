package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// TokenStore holds refresh tokens and the access-token revocation list.
// Key formats:
//
//	auth:refresh:<token>      → user id       (TTL = refresh lifetime)
//	auth:refresh_of:<user_id> → refresh token (index for cleanup)
//	auth:revoked:<sha256>     → "1"           (TTL = remaining access lifetime)
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (t *TokenStore) SaveRefresh(ctx context.Context, token, userID string, ttl time.Duration) error {
	pipe := t.client.TxPipeline()
	pipe.Set(ctx, refreshKey(token), userID, ttl)
	pipe.Set(ctx, refreshIndexKey(userID), token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save refresh: %w", err)
	}
	return nil
}

func (t *TokenStore) LookupRefresh(ctx context.Context, token string) (string, error) {
	userID, err := t.client.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrSessionExpired
		}
		return "", fmt.Errorf("lookup refresh: %w", err)
	}
	return userID, nil
}

// DeleteRefreshByUser drops the user's refresh token and its index entry.
// This is the "stale local auth artifact" cleanup contract.
func (t *TokenStore) DeleteRefreshByUser(ctx context.Context, userID string) error {
	token, err := t.client.Get(ctx, refreshIndexKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("refresh index lookup: %w", err)
	}
	return t.client.Del(ctx, refreshKey(token), refreshIndexKey(userID)).Err()
}

// Revoke blacklists an access token until its natural expiry.
func (t *TokenStore) Revoke(ctx context.Context, accessToken string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return t.client.Set(ctx, revokedKey(accessToken), "1", ttl).Err()
}

func (t *TokenStore) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	n, err := t.client.Exists(ctx, revokedKey(accessToken)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}

func refreshIndexKey(userID string) string {
	return "auth:refresh_of:" + userID
}

func revokedKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return "auth:revoked:" + hex.EncodeToString(sum[:])
}
