package weierstrass

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/decompose"
	"github.com/smallyu/go-curves/internal/crypto/wnaf"
)

func (c *Curve[T]) split(k *big.Int) decompose.Split {
	s, err := decompose.SplitScalar(k, c.cfg.Endo.Basis, c.cfg.N)
	if err != nil {
		// only reachable with a broken basis, which NewCurve cannot detect
		panic(err)
	}
	return s
}

// finishEndo returns ±k1p ± β·k2p.
func (c *Curve[T]) finishEndo(k1p, k2p *Point[T], s decompose.Split) *Point[T] {
	k2p = k2p.mulX(c.cfg.Endo.Beta)
	return k1p.cnegate(s.K1Neg).Add(k2p.cnegate(s.K2Neg))
}

// Multiply returns k·p for k in [1, n). The sequence of group operations
// does not depend on k.
func (p *Point[T]) Multiply(k *big.Int) (*Point[T], error) {
	c := p.c
	if !c.fn.IsValidNot0(k) {
		return nil, errors.Wrap(ErrScalarOutOfRange, "expected 1 <= k < n")
	}
	var point, fake *Point[T]
	if c.cfg.Endo != nil {
		s := c.split(k)
		k1p, k1f := c.engine.Multiply(p, s.K1)
		k2p, k2f := c.engine.Multiply(p, s.K2)
		fake = k1f.Add(k2f)
		point = c.finishEndo(k1p, k2p, s)
	} else {
		point, fake = c.engine.Multiply(p, k)
	}
	return c.NormalizeZ([]*Point[T]{point, fake})[0], nil
}

// MultiplyUnsafe returns k·p for k in [0, n) in variable time. It must
// only be used with public scalars, as in signature verification.
func (p *Point[T]) MultiplyUnsafe(k *big.Int) (*Point[T], error) {
	c := p.c
	if !c.fn.IsValid(k) {
		return nil, errors.Wrap(ErrScalarOutOfRange, "expected 0 <= k < n")
	}
	switch {
	case k.Sign() == 0 || p.IsZero():
		return c.zero, nil
	case k.Cmp(big.NewInt(1)) == 0:
		return p, nil
	case c.engine.HasTable(p):
		return c.engine.MultiplyUnsafe(p, k, c.zero), nil
	case c.cfg.Endo != nil:
		s := c.split(k)
		p1, p2 := mulEndoUnsafe(c, p, s.K1, s.K2)
		return c.finishEndo(p1, p2, s), nil
	default:
		return c.engine.MultiplyUnsafe(p, k, c.zero), nil
	}
}

// mulEndoUnsafe is a joint double-and-add over both half-scalars.
func mulEndoUnsafe[T any](c *Curve[T], p *Point[T], k1, k2 *big.Int) (*Point[T], *Point[T]) {
	acc := p
	p1, p2 := c.zero, c.zero
	n := k1.BitLen()
	if k2.BitLen() > n {
		n = k2.BitLen()
	}
	for i := 0; i < n; i++ {
		if k1.Bit(i) == 1 {
			p1 = p1.Add(acc)
		}
		if k2.Bit(i) == 1 {
			p2 = p2.Add(acc)
		}
		acc = acc.Double()
	}
	return p1, p2
}

// MultiplyAndAddUnsafe returns a·p + b·q in variable time. The boolean
// is false when the sum is the identity. Multiplications of the
// generator go through its precomputed table.
func (p *Point[T]) MultiplyAndAddUnsafe(q *Point[T], a, b *big.Int) (*Point[T], bool, error) {
	mul := func(pt *Point[T], k *big.Int) (*Point[T], error) {
		if k.Sign() == 0 || k.Cmp(big.NewInt(1)) == 0 || !pt.Equal(pt.c.base) {
			return pt.MultiplyUnsafe(k)
		}
		return pt.Multiply(k)
	}
	ap, err := mul(p, a)
	if err != nil {
		return nil, false, err
	}
	bq, err := mul(q, b)
	if err != nil {
		return nil, false, err
	}
	sum := ap.Add(bq)
	if sum.IsZero() {
		return nil, false, nil
	}
	return sum, true, nil
}

// mulUnchecked multiplies by any non-negative integer, including values
// outside the scalar field such as n or the cofactor.
func (p *Point[T]) mulUnchecked(k *big.Int) *Point[T] {
	return wnaf.MultiplyDoubleAdd[*Point[T]](group[T]{p.c}, p, k)
}

// IsTorsionFree reports whether n·p is the identity.
func (p *Point[T]) IsTorsionFree() bool {
	c := p.c
	if c.cfg.H.Cmp(big.NewInt(1)) == 0 {
		return true
	}
	if c.cfg.IsTorsionFree != nil {
		return c.cfg.IsTorsionFree(c, p)
	}
	return p.mulUnchecked(c.cfg.N).IsZero()
}

// ClearCofactor maps p into the prime-order subgroup.
func (p *Point[T]) ClearCofactor() *Point[T] {
	c := p.c
	if c.cfg.H.Cmp(big.NewInt(1)) == 0 {
		return p
	}
	if c.cfg.ClearCofactor != nil {
		return c.cfg.ClearCofactor(c, p)
	}
	return p.mulUnchecked(c.cfg.H)
}

// MultiplyBy multiplies by an arbitrary non-negative integer in variable
// time. It exists for curve-specific maps such as multiplication by the
// BLS parameter and must not see secrets.
func (p *Point[T]) MultiplyBy(k *big.Int) *Point[T] {
	return p.mulUnchecked(k)
}
