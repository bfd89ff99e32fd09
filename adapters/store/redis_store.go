package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/layer-3/zkauth/core"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the UserRegistry and
// ChallengeStore ports. Records are CBOR encoded. Challenge expiry relies on
// Redis key TTLs and consumption on GETDEL.
type RedisStore struct {
	client *redis.Client
	prefix string
	enc    cbor.EncMode
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		// static options, only fails on programmer error
		panic(fmt.Sprintf("store: cbor encoder: %v", err))
	}
	return &RedisStore{
		client: client,
		prefix: "zkauth:",
		enc:    enc,
	}
}

func (s *RedisStore) userKey(username string) string {
	return s.prefix + "user:" + username
}

func (s *RedisStore) challengeKey(authID string) string {
	return s.prefix + "challenge:" + authID
}

// PutUser stores or replaces a user record
func (s *RedisStore) PutUser(ctx context.Context, user *core.UserRecord) error {
	payload, err := s.enc.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.client.Set(ctx, s.userKey(user.Username), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store user: %w: %w", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// GetUser retrieves a user record
func (s *RedisStore) GetUser(ctx context.Context, username string) (*core.UserRecord, error) {
	payload, err := s.client.Get(ctx, s.userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w: %w", core.ErrStoreOperationFailed, err)
	}

	var user core.UserRecord
	if err := cbor.Unmarshal(payload, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// PutChallenge stores a pending challenge that expires after ttl
func (s *RedisStore) PutChallenge(ctx context.Context, challenge *core.ChallengeSession, ttl time.Duration) error {
	record := *challenge
	if ttl > 0 {
		record.ExpiresAt = time.Now().Add(ttl)
	}
	payload, err := s.enc.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.challengeKey(challenge.AuthID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store challenge: %w: %w", core.ErrStoreOperationFailed, err)
	}
	if !ok {
		return core.ErrChallengeExists
	}
	return nil
}

// TakeChallenge removes and returns a pending challenge
func (s *RedisStore) TakeChallenge(ctx context.Context, authID string) (*core.ChallengeSession, error) {
	payload, err := s.client.GetDel(ctx, s.challengeKey(authID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to take challenge: %w: %w", core.ErrStoreOperationFailed, err)
	}

	var challenge core.ChallengeSession
	if err := cbor.Unmarshal(payload, &challenge); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}
	// key TTLs have millisecond granularity, close the gap here
	if challenge.Expired(time.Now()) {
		return nil, core.ErrChallengeNotFound
	}
	return &challenge, nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
