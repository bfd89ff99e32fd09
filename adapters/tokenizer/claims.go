package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the proof that produced them
type AccessClaims struct {
	jwt.RegisteredClaims
	AuthID string `json:"aid,omitempty"` // Challenge the session was issued for
}
