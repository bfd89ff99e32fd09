package core

import "time"

// UserRecord holds the public commitments registered for a user.
// Y1 = alphaˣ and Y2 = betaˣ (mod p), big-endian.
type UserRecord struct {
	Username     string    `cbor:"1,keyasint"` // Unique key
	Y1           []byte    `cbor:"2,keyasint"`
	Y2           []byte    `cbor:"3,keyasint"`
	RegisteredAt time.Time `cbor:"4,keyasint"`
}

// ChallengeSession is a pending proof attempt.
type ChallengeSession struct {
	AuthID    string    `cbor:"1,keyasint"` // Random identifier returned to the prover
	Username  string    `cbor:"2,keyasint"` // Back-reference into the user registry
	R1        []byte    `cbor:"3,keyasint"` // Ephemeral commitment alphaᵏ
	R2        []byte    `cbor:"4,keyasint"` // Ephemeral commitment betaᵏ
	C         []byte    `cbor:"5,keyasint"` // Verifier challenge
	S         []byte    `cbor:"6,keyasint"` // Prover response, set at verification time
	IssuedAt  time.Time `cbor:"7,keyasint"`
	ExpiresAt time.Time `cbor:"8,keyasint"`
}

// Expired reports whether the challenge can no longer be answered at now.
func (c *ChallengeSession) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Session represents an authenticated user session
type Session struct {
	ID        string    // Opaque session identifier handed to the prover
	Username  string    // User that proved knowledge of x
	AuthID    string    // Challenge the session was issued for
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the access token expires
}
