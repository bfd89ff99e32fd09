package prover

import "github.com/ethereum/go-ethereum/common/hexutil"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	User string        `json:"user"`
	Y1   hexutil.Bytes `json:"y1"`
	Y2   hexutil.Bytes `json:"y2"`
}

// ChallengeRequest is the body of POST /auth/challenge.
type ChallengeRequest struct {
	User string        `json:"user"`
	R1   hexutil.Bytes `json:"r1"`
	R2   hexutil.Bytes `json:"r2"`
}

// ChallengeResponse carries the verifier's challenge.
type ChallengeResponse struct {
	AuthID string        `json:"auth_id"`
	C      hexutil.Bytes `json:"c"`
}

// VerifyRequest is the body of POST /auth/verify.
type VerifyRequest struct {
	AuthID string        `json:"auth_id"`
	S      hexutil.Bytes `json:"s"`
}

// VerifyResponse is returned for an accepted proof.
type VerifyResponse struct {
	SessionID   string `json:"session_id"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ParamsResponse describes the verifier's group.
type ParamsResponse struct {
	P     hexutil.Bytes `json:"p"`
	Q     hexutil.Bytes `json:"q"`
	Alpha hexutil.Bytes `json:"alpha"`
	Beta  hexutil.Bytes `json:"beta"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
