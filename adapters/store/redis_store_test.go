package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/zkauth/core"
	"github.com/layer-3/zkauth/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.UserRegistry   = (*RedisStore)(nil)
	_ ports.ChallengeStore = (*RedisStore)(nil)
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_Users(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Ping(ctx))

	_, err := s.GetUser(ctx, "alice")
	require.ErrorIs(t, err, core.ErrUserNotFound)

	registeredAt := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	require.NoError(t, s.PutUser(ctx, &core.UserRecord{
		Username:     "alice",
		Y1:           []byte{0x01, 0x02},
		Y2:           []byte{0x03, 0x04},
		RegisteredAt: registeredAt,
	}))
	assert.True(t, mr.Exists("zkauth:user:alice"))
	assert.Equal(t, time.Duration(0), mr.TTL("zkauth:user:alice"), "users do not expire")

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []byte{0x01, 0x02}, got.Y1)
	assert.Equal(t, []byte{0x03, 0x04}, got.Y2)
	assert.True(t, registeredAt.Equal(got.RegisteredAt))
}

func TestRedisStore_Challenges(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	ch := &core.ChallengeSession{
		AuthID:   "auth-1",
		Username: "alice",
		R1:       []byte{1},
		R2:       []byte{2},
		C:        []byte{3},
		IssuedAt: time.Now().UTC(),
	}
	require.NoError(t, s.PutChallenge(ctx, ch, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("zkauth:challenge:auth-1"))

	err := s.PutChallenge(ctx, &core.ChallengeSession{AuthID: "auth-1"}, time.Minute)
	require.ErrorIs(t, err, core.ErrChallengeExists)

	got, err := s.TakeChallenge(ctx, "auth-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []byte{1}, got.R1)
	assert.Equal(t, []byte{2}, got.R2)
	assert.Equal(t, []byte{3}, got.C)
	assert.False(t, got.ExpiresAt.IsZero())
	assert.False(t, mr.Exists("zkauth:challenge:auth-1"), "take consumes the challenge")

	_, err = s.TakeChallenge(ctx, "auth-1")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestRedisStore_ChallengeExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.PutChallenge(ctx, &core.ChallengeSession{AuthID: "auth-2", Username: "bob"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.TakeChallenge(ctx, "auth-2")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, err := s.GetUser(ctx, "alice")
	require.ErrorIs(t, err, core.ErrStoreOperationFailed)

	_, err = s.TakeChallenge(ctx, "auth-1")
	require.ErrorIs(t, err, core.ErrStoreOperationFailed)
}
