package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tally/internal/logger"
)

// TokenStore is the key/value store behind CachingVerifier.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// errCacheMiss is returned by a TokenStore when the key is absent.
var errCacheMiss = errors.New("identity: cache miss")

// RedisTokenStore stores verified identities in Redis.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore wraps an existing Redis client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Get implements TokenStore.
func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCacheMiss
	}
	return val, err
}

// Set implements TokenStore.
func (s *RedisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CachingVerifier caches successful verifications of the wrapped verifier.
// Store failures are logged and fall through to the wrapped verifier.
type CachingVerifier struct {
	next  Verifier
	store TokenStore
	ttl   time.Duration
	now   func() time.Time
}

// NewCachingVerifier wraps next with a cache holding entries for at most ttl.
func NewCachingVerifier(next Verifier, store TokenStore, ttl time.Duration) *CachingVerifier {
	return &CachingVerifier{next: next, store: store, ttl: ttl, now: time.Now}
}

// Verify implements Verifier.
func (v *CachingVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	key := cacheKey(token)

	raw, err := v.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached Identity
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil && !v.expired(&cached) {
			return &cached, nil
		}
	case !errors.Is(err, errCacheMiss):
		logger.Get().Warnw("token cache read failed", "error", err)
	}

	identity, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := v.ttl
	if identity.ExpiresAt > 0 {
		if remaining := time.Unix(identity.ExpiresAt, 0).Sub(v.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl > 0 {
		if encoded, jsonErr := json.Marshal(identity); jsonErr == nil {
			if setErr := v.store.Set(ctx, key, string(encoded), ttl); setErr != nil {
				logger.Get().Warnw("token cache write failed", "error", setErr)
			}
		}
	}

	return identity, nil
}

func (v *CachingVerifier) expired(i *Identity) bool {
	return i.ExpiresAt > 0 && v.now().Unix() >= i.ExpiresAt
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "tally:token:" + hex.EncodeToString(sum[:])
}
