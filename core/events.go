package core

import "time"

// EventType names an authentication lifecycle transition.
type EventType string

const (
	EventRegistered      EventType = "registered"
	EventChallengeIssued EventType = "challenge_issued"
	EventVerified        EventType = "verified"
	EventRejected        EventType = "rejected"
)

// AuthEvent is published for every protocol step. It never carries secrets or
// raw session identifiers.
type AuthEvent struct {
	Type               EventType `json:"type"`
	Username           string    `json:"username"`
	AuthID             string    `json:"auth_id,omitempty"`
	SessionFingerprint string    `json:"session_fingerprint,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}
