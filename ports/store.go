package ports

import (
	"context"
	"time"

	"github.com/layer-3/zkauth/core"
)

// UserRegistry stores the public commitments of registered users.
type UserRegistry interface {
	// PutUser creates or replaces the record for user.Username.
	PutUser(ctx context.Context, user *core.UserRecord) error

	// GetUser returns core.ErrUserNotFound for unknown usernames.
	GetUser(ctx context.Context, username string) (*core.UserRecord, error)
}

// ChallengeStore stores pending proof sessions keyed by auth id.
type ChallengeStore interface {
	// PutChallenge inserts a new session that expires after ttl. It returns
	// core.ErrChallengeExists if the auth id is already taken.
	PutChallenge(ctx context.Context, challenge *core.ChallengeSession, ttl time.Duration) error

	// TakeChallenge atomically removes and returns the session. Unknown,
	// consumed and expired ids return core.ErrChallengeNotFound.
	TakeChallenge(ctx context.Context, authID string) (*core.ChallengeSession, error)
}

// ExpiringStore is implemented by stores without native expiry.
type ExpiringStore interface {
	DeleteExpired(ctx context.Context) (int, error)
}
