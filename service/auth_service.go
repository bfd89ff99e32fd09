package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/layer-3/zkauth/core"
	"github.com/layer-3/zkauth/internal/slogx"
	"github.com/layer-3/zkauth/ports"
	"github.com/layer-3/zkauth/zkp"
)

const (
	DefaultChallengeTTL    = 5 * time.Minute
	DefaultSessionTTL      = 5 * time.Minute
	DefaultAuthIDLength    = 16
	DefaultSessionIDLength = 32

	// MinIDLength keeps auth and session id collisions negligible.
	MinIDLength = 12

	maxUsernameLength = 256
	maxAuthIDAttempts = 3
)

// AuthService runs the verifier side of the Chaum-Pedersen protocol:
// registration, challenge issuance and proof verification.
type AuthService struct {
	params     *zkp.Params
	users      ports.UserRegistry
	challenges ports.ChallengeStore
	tokenizer  ports.Tokenizer
	eventPub   ports.EventPublisher
	random     *zkp.Source
	now        func() time.Time

	challengeTTL    time.Duration
	sessionTTL      time.Duration
	authIDLength    int
	sessionIDLength int
}

// Option configures an AuthService
type Option func(*AuthService)

// WithChallengeTTL sets how long an issued challenge can be answered
func WithChallengeTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.challengeTTL = ttl }
}

// WithSessionTTL sets the lifetime of issued access tokens
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// WithAuthIDLength sets the length of generated auth ids
func WithAuthIDLength(n int) Option {
	return func(s *AuthService) { s.authIDLength = n }
}

// WithSessionIDLength sets the length of generated session ids
func WithSessionIDLength(n int) Option {
	return func(s *AuthService) { s.sessionIDLength = n }
}

// WithRandomSource replaces the randomness used for challenges and ids
func WithRandomSource(src *zkp.Source) Option {
	return func(s *AuthService) { s.random = src }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new authentication service
func NewAuthService(
	params *zkp.Params,
	users ports.UserRegistry,
	challenges ports.ChallengeStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		params:          params,
		users:           users,
		challenges:      challenges,
		tokenizer:       tokenizer,
		eventPub:        eventPub,
		random:          zkp.DefaultSource,
		now:             time.Now,
		challengeTTL:    DefaultChallengeTTL,
		sessionTTL:      DefaultSessionTTL,
		authIDLength:    DefaultAuthIDLength,
		sessionIDLength: DefaultSessionIDLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authIDLength < MinIDLength {
		s.authIDLength = MinIDLength
	}
	if s.sessionIDLength < MinIDLength {
		s.sessionIDLength = MinIDLength
	}
	return s
}

// Params returns the group parameters the service verifies against
func (s *AuthService) Params() *zkp.Params {
	return s.params
}

// SessionTTL returns the lifetime of issued access tokens
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Register stores (or replaces) the commitments y1 = alphaˣ, y2 = betaˣ for
// username. Pending challenges of a re-registered user are left in place and
// will fail verification against the new commitments.
func (s *AuthService) Register(ctx context.Context, username string, y1, y2 []byte) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if _, ok := s.params.ElementFromBytes(y1); !ok {
		return fmt.Errorf("y1 is not a group element: %w", core.ErrInvalidArgument)
	}
	if _, ok := s.params.ElementFromBytes(y2); !ok {
		return fmt.Errorf("y2 is not a group element: %w", core.ErrInvalidArgument)
	}

	user := &core.UserRecord{
		Username:     username,
		Y1:           y1,
		Y2:           y2,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.users.PutUser(ctx, user); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", "user", username)
	s.publish(ctx, &core.AuthEvent{Type: core.EventRegistered, Username: username})
	return nil
}

// CreateChallenge records the prover's ephemeral commitments and returns a
// fresh auth id together with a challenge c drawn uniformly from [0, q).
func (s *AuthService) CreateChallenge(ctx context.Context, username string, r1, r2 []byte) (string, []byte, error) {
	if err := validateUsername(username); err != nil {
		return "", nil, err
	}
	if _, ok := s.params.ElementFromBytes(r1); !ok {
		return "", nil, fmt.Errorf("r1 is not a group element: %w", core.ErrInvalidArgument)
	}
	if _, ok := s.params.ElementFromBytes(r2); !ok {
		return "", nil, fmt.Errorf("r2 is not a group element: %w", core.ErrInvalidArgument)
	}

	if _, err := s.users.GetUser(ctx, username); err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	c, err := s.random.Below(s.params.Q)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate challenge: %w", err)
	}
	cBytes := c.Bytes()

	now := s.now().UTC()
	challenge := &core.ChallengeSession{
		Username:  username,
		R1:        r1,
		R2:        r2,
		C:         cBytes,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	for attempt := 1; ; attempt++ {
		challenge.AuthID, err = s.random.Token(s.authIDLength)
		if err != nil {
			return "", nil, fmt.Errorf("failed to generate auth id: %w", err)
		}
		err = s.challenges.PutChallenge(ctx, challenge, s.challengeTTL)
		if err == nil {
			break
		}
		if !errors.Is(err, core.ErrChallengeExists) || attempt == maxAuthIDAttempts {
			return "", nil, fmt.Errorf("failed to store challenge: %w", err)
		}
	}

	slogx.FromContext(ctx).Info("challenge created", "user", username, "auth_id", challenge.AuthID)
	s.publish(ctx, &core.AuthEvent{Type: core.EventChallengeIssued, Username: username, AuthID: challenge.AuthID})
	return challenge.AuthID, cBytes, nil
}

// VerifyResponse checks the prover's response s for the challenge identified
// by authID. The challenge is consumed whatever the outcome, so every
// attempt needs a new challenge. On success a new session is returned along
// with its signed access token.
func (s *AuthService) VerifyResponse(ctx context.Context, authID string, sBytes []byte) (*core.Session, string, error) {
	if authID == "" {
		return nil, "", fmt.Errorf("empty auth id: %w", core.ErrInvalidArgument)
	}

	challenge, err := s.challenges.TakeChallenge(ctx, authID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load challenge: %w", err)
	}
	challenge.S = sBytes

	user, err := s.users.GetUser(ctx, challenge.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	logger := slogx.FromContext(ctx).With("user", challenge.Username, "auth_id", authID)

	if !s.verify(challenge, user) {
		logger.Warn("proof rejected")
		s.publish(ctx, &core.AuthEvent{Type: core.EventRejected, Username: challenge.Username, AuthID: authID})
		return nil, "", core.ErrInvalidProof
	}

	sessionID, err := s.random.Token(s.sessionIDLength)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.now().UTC()
	session := &core.Session{
		ID:        sessionID,
		Username:  challenge.Username,
		AuthID:    authID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	var accessToken string
	if s.tokenizer != nil {
		accessToken, err = s.tokenizer.SessionToAccessToken(session)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create access token: %w", err)
		}
	}

	fingerprint := Fingerprint(sessionID)
	logger.Info("proof verified", "session", fingerprint)
	s.publish(ctx, &core.AuthEvent{
		Type:               core.EventVerified,
		Username:           challenge.Username,
		AuthID:             authID,
		SessionFingerprint: fingerprint,
	})

	return session, accessToken, nil
}

// verify evaluates the Chaum-Pedersen predicate for a consumed challenge.
func (s *AuthService) verify(challenge *core.ChallengeSession, user *core.UserRecord) bool {
	sv, ok := s.params.ExponentFromBytes(challenge.S)
	if !ok {
		return false
	}
	return s.params.Verify(
		new(saferith.Nat).SetBytes(challenge.R1),
		new(saferith.Nat).SetBytes(challenge.R2),
		new(saferith.Nat).SetBytes(user.Y1),
		new(saferith.Nat).SetBytes(user.Y2),
		new(saferith.Nat).SetBytes(challenge.C),
		sv,
	)
}

// publish sends an event without failing the operation. The store is the
// source of truth; events are best effort.
func (s *AuthService) publish(ctx context.Context, event *core.AuthEvent) {
	if s.eventPub == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.eventPub.PublishAuthEvent(ctx, event); err != nil {
		slogx.FromContext(ctx).Warn("failed to publish auth event", "type", event.Type, "error", err)
	}
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("empty username: %w", core.ErrInvalidArgument)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username longer than %d bytes: %w", maxUsernameLength, core.ErrInvalidArgument)
	}
	return nil
}
