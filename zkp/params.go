package zkp

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/cronokirby/saferith"
)

type Error string

const (
	ErrNilFields        Error = "contains nil field"
	ErrGeneratorRange   Error = "generators must be in [2,…,p-1]"
	ErrGeneratorOrder   Error = "generators must have order q modulo p"
	ErrEqualGenerators  Error = "alpha cannot be equal to beta"
	ErrSubgroupTooLarge Error = "q must be smaller than p"
)

func (e Error) Error() string {
	return fmt.Sprintf("zkp: %s", string(e))
}

// RFC 5114 §2.1: 1024-bit MODP group with a 160-bit prime order subgroup.
const (
	rfc5114P     = "B10B8F96A080E01DDE92DE5EAE5D54EC52C99FBCFB06A3C69A6A9DCA52D23B616073E28675A23D189838EF1E2EE652C013ECB4AEA906112324975C3CD49B83BFACCBDD7D90C4BD7098488E9C219A73724EFFD6FAE5644738FAA31A4FF55BCCC0A151AF5F0DC8B4BD45BF37DF365C1A65E68CFDA76D4DA708DF1FB2BC2E4A4371"
	rfc5114Q     = "F518AA8781A8DF278ABA4E7D64B7CB9D49462353"
	rfc5114Alpha = "A4D1CBD5C3FD34126765A442EFB99905F8104DD258AC507FD6406CFF14266D31266FEA1E5C41564B777E690F5504F213160217B4B01B886A5E91547F9E2749F4D7FBD7D3B9A92EE1909D0D2263F80A76A6A24C087A091F531DBF0A0169B6A28AD662A4D18E73AFA32D779D5918D08BC8858F4DCEF97C2A24855E6EEB22B3B2E5"

	// betaExponent is the fixed exponent e with beta = alphaᵉ (mod p).
	betaExponent = "266FEA1E5C41564B777E69"
)

// Params holds the public group parameters shared by prover and verifier.
//
// Alpha and Beta generate the subgroup of order Q in (ℤ/Pℤ)*. A Params value
// is never mutated after construction and is safe for concurrent use.
type Params struct {
	P     *saferith.Modulus
	Q     *saferith.Modulus
	Alpha *saferith.Nat
	Beta  *saferith.Nat
}

var defaultParams = sync.OnceValue(func() *Params {
	p := saferith.ModulusFromBytes(mustDecodeHex(rfc5114P))
	q := saferith.ModulusFromBytes(mustDecodeHex(rfc5114Q))
	alpha := new(saferith.Nat).SetBytes(mustDecodeHex(rfc5114Alpha))
	e := new(saferith.Nat).SetBytes(mustDecodeHex(betaExponent))
	beta := new(saferith.Nat).Exp(alpha, e, p)
	return &Params{P: p, Q: q, Alpha: alpha, Beta: beta}
})

// Default returns the process-wide RFC 5114 parameters.
func Default() *Params {
	return defaultParams()
}

// New builds parameters from big-endian encodings of p, q, alpha and beta.
// The result is validated.
func New(p, q, alpha, beta []byte) (*Params, error) {
	if len(p) == 0 || len(q) == 0 || len(alpha) == 0 || len(beta) == 0 {
		return nil, ErrNilFields
	}
	params := &Params{
		P:     saferith.ModulusFromBytes(p),
		Q:     saferith.ModulusFromBytes(q),
		Alpha: new(saferith.Nat).SetBytes(alpha),
		Beta:  new(saferith.Nat).SetBytes(beta),
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that:
// - no field is nil.
// - q < p.
// - alpha, beta are in [2, …, p-1].
// - alphaᵠ ≡ betaᵠ ≡ 1 (mod p).
// - alpha ≠ beta.
func (g *Params) Validate() error {
	if g == nil || g.P == nil || g.Q == nil || g.Alpha == nil || g.Beta == nil {
		return ErrNilFields
	}
	p := g.P.Nat()
	if belowChoice(g.Q.Nat(), p) != 1 {
		return ErrSubgroupTooLarge
	}
	one := new(saferith.Nat).SetUint64(1)
	alpha := new(saferith.Nat).SetNat(g.Alpha)
	beta := new(saferith.Nat).SetNat(g.Beta)
	for _, gen := range []*saferith.Nat{alpha, beta} {
		if belowChoice(gen, p) != 1 {
			return ErrGeneratorRange
		}
		if gen.EqZero() == 1 || gen.Eq(one) == 1 {
			return ErrGeneratorRange
		}
		if new(saferith.Nat).Exp(gen, g.Q.Nat(), g.P).Eq(one) != 1 {
			return ErrGeneratorOrder
		}
	}
	if alpha.Eq(beta) == 1 {
		return ErrEqualGenerators
	}
	return nil
}

// ElementBytes is the length of a group element encoded with FillBytes.
func (g *Params) ElementBytes() int { return (g.P.BitLen() + 7) / 8 }

// ExponentBytes is the length of an exponent encoded with FillBytes.
func (g *Params) ExponentBytes() int { return (g.Q.BitLen() + 7) / 8 }

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("zkp: invalid hex constant: %v", err))
	}
	return b
}
