package store

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/layer-3/zkauth/core"
)

const shardCount = 32

// shardedMap spreads keys over independently locked shards so requests for
// unrelated keys do not serialize on a single mutex.
type shardedMap[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func newShardedMap[V any]() *shardedMap[V] {
	m := &shardedMap[V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

func (m *shardedMap[V]) shard(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &m.shards[h.Sum32()%shardCount]
}

// MemoryStore is an in-memory implementation of the UserRegistry and
// ChallengeStore ports. Records are copied on the way in and out so callers
// never share slices with the store.
type MemoryStore struct {
	users      *shardedMap[core.UserRecord]
	challenges *shardedMap[core.ChallengeSession]
	now        func() time.Time
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now for expiry decisions
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		users:      newShardedMap[core.UserRecord](),
		challenges: newShardedMap[core.ChallengeSession](),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutUser stores or replaces a user record
func (s *MemoryStore) PutUser(ctx context.Context, user *core.UserRecord) error {
	record := copyUser(user)
	sh := s.users.shard(user.Username)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.items[user.Username] = record
	return nil
}

// GetUser retrieves a user record
func (s *MemoryStore) GetUser(ctx context.Context, username string) (*core.UserRecord, error) {
	sh := s.users.shard(username)

	sh.mu.RLock()
	record, ok := sh.items[username]
	sh.mu.RUnlock()

	if !ok {
		return nil, core.ErrUserNotFound
	}
	out := copyUser(&record)
	return &out, nil
}

// PutChallenge stores a pending challenge that expires after ttl
func (s *MemoryStore) PutChallenge(ctx context.Context, challenge *core.ChallengeSession, ttl time.Duration) error {
	record := copyChallenge(challenge)
	if ttl > 0 {
		record.ExpiresAt = s.now().Add(ttl)
	}
	sh := s.challenges.shard(challenge.AuthID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.items[challenge.AuthID]; ok && !existing.Expired(s.now()) {
		return core.ErrChallengeExists
	}
	sh.items[challenge.AuthID] = record
	return nil
}

// TakeChallenge removes and returns a pending challenge
func (s *MemoryStore) TakeChallenge(ctx context.Context, authID string) (*core.ChallengeSession, error) {
	sh := s.challenges.shard(authID)

	sh.mu.Lock()
	record, ok := sh.items[authID]
	if ok {
		delete(sh.items, authID)
	}
	sh.mu.Unlock()

	if !ok || record.Expired(s.now()) {
		return nil, core.ErrChallengeNotFound
	}
	return &record, nil
}

// DeleteExpired drops every challenge whose expiry has passed and returns
// how many were removed.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	deleted := 0
	for i := range s.challenges.shards {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		sh := &s.challenges.shards[i]
		sh.mu.Lock()
		for id, record := range sh.items {
			if record.Expired(now) {
				delete(sh.items, id)
				deleted++
			}
		}
		sh.mu.Unlock()
	}
	return deleted, nil
}

// Len returns the number of stored challenges, expired ones included.
func (s *MemoryStore) Len() int {
	n := 0
	for i := range s.challenges.shards {
		sh := &s.challenges.shards[i]
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

func copyUser(u *core.UserRecord) core.UserRecord {
	out := *u
	out.Y1 = cloneBytes(u.Y1)
	out.Y2 = cloneBytes(u.Y2)
	return out
}

func copyChallenge(c *core.ChallengeSession) core.ChallengeSession {
	out := *c
	out.R1 = cloneBytes(c.R1)
	out.R2 = cloneBytes(c.R2)
	out.C = cloneBytes(c.C)
	out.S = cloneBytes(c.S)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
