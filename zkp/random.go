package zkp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

// Alphabet is the symbol set used by Token.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	ErrMaxIterations = fmt.Errorf("zkp: failed to sample after %d iterations", maxIterations)
	ErrTokenLength   = errors.New("zkp: token length must be positive")
)

// Source draws uniform values from an underlying byte stream.
type Source struct {
	r io.Reader
}

// NewSource wraps r. A nil reader selects crypto/rand.
func NewSource(r io.Reader) *Source {
	if r == nil {
		r = rand.Reader
	}
	return &Source{r: r}
}

// DefaultSource reads from crypto/rand.
var DefaultSource = NewSource(nil)

// Below samples an element of [0, limit).
func (s *Source) Below(limit *saferith.Modulus) (*saferith.Nat, error) {
	bits := limit.BitLen()
	buf := make([]byte, (bits+7)/8)
	// clear the bits above limit's length to keep the rejection rate below 1/2
	mask := byte(0xff >> (8*len(buf) - bits))
	// Cmp writes to both operands and limit may be shared between goroutines
	bound := limit.Nat()
	out := new(saferith.Nat)
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(s.r, buf); err != nil {
			return nil, fmt.Errorf("zkp: read randomness: %w", err)
		}
		buf[0] &= mask
		out.SetBytes(buf)
		if _, _, lt := out.Cmp(bound); lt == 1 {
			return out, nil
		}
	}
	return nil, ErrMaxIterations
}

// Token returns a string of length n drawn uniformly from Alphabet.
func (s *Source) Token(n int) (string, error) {
	if n <= 0 {
		return "", ErrTokenLength
	}
	// largest multiple of len(Alphabet) that fits in a byte; bytes at or
	// above it are discarded so every symbol is equally likely
	const limit = 256 - 256%len(Alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)
	for i := 0; len(out) < n; i++ {
		if i == maxIterations {
			return "", ErrMaxIterations
		}
		if _, err := io.ReadFull(s.r, buf); err != nil {
			return "", fmt.Errorf("zkp: read randomness: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// RandomBelow samples an element of [0, limit) from crypto/rand.
func RandomBelow(limit *saferith.Modulus) (*saferith.Nat, error) {
	return DefaultSource.Below(limit)
}

// RandomToken returns an alphanumeric string of length n from crypto/rand.
func RandomToken(n int) (string, error) {
	return DefaultSource.Token(n)
}
