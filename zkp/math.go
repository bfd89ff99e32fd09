package zkp

import (
	"github.com/cronokirby/saferith"
)

// ComputePair returns (alphaᵉ mod p, betaᵉ mod p).
//
// With e = x this yields the registration commitments (y1, y2); with a fresh
// ephemeral k it yields the per-login commitments (r1, r2).
func (g *Params) ComputePair(exp *saferith.Nat) (a, b *saferith.Nat) {
	a = new(saferith.Nat).Exp(g.Alpha, exp, g.P)
	b = new(saferith.Nat).Exp(g.Beta, exp, g.P)
	return a, b
}

// Solve returns s = k - c⋅x (mod q).
//
// The subtraction is modular, i.e. (k + q - (c⋅x mod q)) mod q, so the result
// is always in [0, q).
func (g *Params) Solve(k, c, x *saferith.Nat) *saferith.Nat {
	cx := new(saferith.Nat).ModMul(c, x, g.Q)
	kq := new(saferith.Nat).Mod(k, g.Q)
	return new(saferith.Nat).ModSub(kq, cx, g.Q)
}

// Verify returns true if r1 ≡ alphaˢ⋅y1ᶜ and r2 ≡ betaˢ⋅y2ᶜ (mod p).
//
// r1, r2, y1 and y2 must already be reduced: a value at or above p is
// rejected rather than reduced. Both equations are always evaluated and
// combined in constant time.
func (g *Params) Verify(r1, r2, y1, y2, c, s *saferith.Nat) bool {
	if r1 == nil || r2 == nil || y1 == nil || y2 == nil || c == nil || s == nil {
		return false
	}

	p := g.P.Nat()
	inRange := belowChoice(r1, p) & belowChoice(r2, p) & belowChoice(y1, p) & belowChoice(y2, p)

	// reduced so out-of-range commitments fail the comparison instead of
	// reaching Exp
	y1r := new(saferith.Nat).Mod(y1, g.P)
	y2r := new(saferith.Nat).Mod(y2, g.P)

	as := new(saferith.Nat).Exp(g.Alpha, s, g.P) // alphaˢ (mod p)
	y1c := new(saferith.Nat).Exp(y1r, c, g.P)    // y1ᶜ (mod p)
	lhs1 := as.ModMul(as, y1c, g.P)

	bs := new(saferith.Nat).Exp(g.Beta, s, g.P) // betaˢ (mod p)
	y2c := new(saferith.Nat).Exp(y2r, c, g.P)   // y2ᶜ (mod p)
	lhs2 := bs.ModMul(bs, y2c, g.P)

	eq1 := lhs1.Eq(new(saferith.Nat).SetNat(r1))
	eq2 := lhs2.Eq(new(saferith.Nat).SetNat(r2))

	return inRange&eq1&eq2 == 1
}

// InGroup reports whether y is an element of the order-q subgroup, that is
// 1 ≤ y < p and yᵠ ≡ 1 (mod p).
func (g *Params) InGroup(y *saferith.Nat) bool {
	if y == nil {
		return false
	}
	y = new(saferith.Nat).SetNat(y)
	if y.EqZero() == 1 || belowChoice(y, g.P.Nat()) != 1 {
		return false
	}
	one := new(saferith.Nat).SetUint64(1)
	return new(saferith.Nat).Exp(y, g.Q.Nat(), g.P).Eq(one) == 1
}

// InExponentRange reports whether 0 ≤ v < q.
func (g *Params) InExponentRange(v *saferith.Nat) bool {
	if v == nil {
		return false
	}
	return belowChoice(v, g.Q.Nat()) == 1
}

// belowChoice returns 1 if v < bound. Cmp resizes both operands in place, so
// it only ever sees private copies; bound must already be one.
func belowChoice(v, bound *saferith.Nat) saferith.Choice {
	_, _, lt := new(saferith.Nat).SetNat(v).Cmp(bound)
	return lt
}

// ElementFromBytes decodes a big-endian group element and checks subgroup
// membership.
func (g *Params) ElementFromBytes(b []byte) (*saferith.Nat, bool) {
	if len(b) > g.ElementBytes() {
		return nil, false
	}
	y := new(saferith.Nat).SetBytes(b)
	if !g.InGroup(y) {
		return nil, false
	}
	return y, true
}

// ExponentFromBytes decodes a big-endian exponent and checks it is below q.
func (g *Params) ExponentFromBytes(b []byte) (*saferith.Nat, bool) {
	if len(b) > g.ExponentBytes() {
		return nil, false
	}
	v := new(saferith.Nat).SetBytes(b)
	if !g.InExponentRange(v) {
		return nil, false
	}
	return v, true
}
