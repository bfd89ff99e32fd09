// Package prover implements the client side of the Chaum-Pedersen login:
// deriving the secret x from a password, committing to an ephemeral k and
// answering the verifier's challenge.
package prover

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/layer-3/zkauth/zkp"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for DeriveSecret. Changing any of them changes every
// derived secret, so registered users would no longer be able to log in.
const (
	kdfIterations  = 2
	kdfMemory      = 19 * 1024
	kdfParallelism = 1
	kdfKeyLength   = 64
	kdfSaltPrefix  = "zkauth/v1/"
)

var ErrInvalidChallenge = errors.New("prover: challenge out of range")

// DeriveSecret maps a password to an exponent x in [0, q). The username salts
// the derivation so equal passwords give unrelated secrets.
//
// The KDF output is twice the size of q, which makes the modular reduction
// bias negligible.
func DeriveSecret(params *zkp.Params, username, password string) *saferith.Nat {
	key := argon2.IDKey(
		[]byte(password),
		[]byte(kdfSaltPrefix+username),
		kdfIterations,
		kdfMemory,
		kdfParallelism,
		kdfKeyLength,
	)
	return new(saferith.Nat).Mod(new(saferith.Nat).SetBytes(key), params.Q)
}

// Registration returns the public commitments (y1, y2) for secret x.
func Registration(params *zkp.Params, x *saferith.Nat) (y1, y2 []byte) {
	a, b := params.ComputePair(x)
	return a.Bytes(), b.Bytes()
}

// Commitment is the prover's per-login state. K must never leave the client
// and must not be reused across challenges.
type Commitment struct {
	K  *saferith.Nat
	R1 []byte
	R2 []byte
}

// Commit draws a fresh ephemeral k and returns r1 = alphaᵏ, r2 = betaᵏ.
func Commit(params *zkp.Params, src *zkp.Source) (*Commitment, error) {
	if src == nil {
		src = zkp.DefaultSource
	}
	k, err := src.Below(params.Q)
	if err != nil {
		return nil, fmt.Errorf("failed to sample k: %w", err)
	}
	r1, r2 := params.ComputePair(k)
	return &Commitment{K: k, R1: r1.Bytes(), R2: r2.Bytes()}, nil
}

// Respond answers challenge c with s = k - c⋅x (mod q).
func Respond(params *zkp.Params, commitment *Commitment, c []byte, x *saferith.Nat) ([]byte, error) {
	cv, ok := params.ExponentFromBytes(c)
	if !ok {
		return nil, ErrInvalidChallenge
	}
	return params.Solve(commitment.K, cv, x).Bytes(), nil
}
