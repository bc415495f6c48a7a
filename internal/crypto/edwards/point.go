package edwards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/wnaf"
)

// Point is an immutable point in extended coordinates.
type Point[T any] struct {
	c          *Curve[T]
	x, y, z, t T
}

func (p *Point[T]) Curve() *Curve[T] { return p.c }

// Extended returns the raw coordinates.
func (p *Point[T]) Extended() (x, y, z, t T) { return p.x, p.y, p.z, p.t }

// Equal compares by cross-multiplication.
func (p *Point[T]) Equal(q *Point[T]) bool {
	f := p.c.f
	return f.Equal(f.Mul(p.x, q.z), f.Mul(q.x, p.z)) &&
		f.Equal(f.Mul(p.y, q.z), f.Mul(q.y, p.z))
}

// IsZero reports whether p is the neutral element (0, 1).
func (p *Point[T]) IsZero() bool { return p.Equal(p.c.zero) }

// ToAffine returns (x, y); the identity is (0, 1).
func (p *Point[T]) ToAffine() (T, T) {
	f := p.c.f
	if f.IsZero(p.z) {
		return f.Zero(), f.One()
	}
	iz := f.Inv(p.z)
	return f.Mul(p.x, iz), f.Mul(p.y, iz)
}

// AssertValidity checks the projective curve equation
// (aX² + Y²)Z² = Z⁴ + dX²Y² and the extended relation XY = ZT. It does
// not check the subgroup; see IsTorsionFree.
func (p *Point[T]) AssertValidity() error {
	f := p.c.f
	if p.IsZero() {
		return ErrIdentity
	}
	X2, Y2, Z2 := f.Sqr(p.x), f.Sqr(p.y), f.Sqr(p.z)
	Z4 := f.Sqr(Z2)
	left := f.Mul(Z2, f.Add(f.Mul(X2, p.c.cfg.A), Y2))
	right := f.Add(Z4, f.Mul(p.c.cfg.D, f.Mul(X2, Y2)))
	if !f.Equal(left, right) {
		return errors.Wrap(ErrNotOnCurve, "curve equation")
	}
	if !f.Equal(f.Mul(p.x, p.y), f.Mul(p.z, p.t)) {
		return errors.Wrap(ErrNotOnCurve, "extended coordinate relation")
	}
	return nil
}

// Negate returns (-x, y).
func (p *Point[T]) Negate() *Point[T] {
	f := p.c.f
	return &Point[T]{c: p.c, x: f.Neg(p.x), y: p.y, z: p.z, t: f.Neg(p.t)}
}

func (p *Point[T]) cnegate(c bool) *Point[T] {
	f := p.c.f
	return &Point[T]{c: p.c, x: f.CMov(p.x, f.Neg(p.x), c), y: p.y, z: p.z, t: f.CMov(p.t, f.Neg(p.t), c)}
}

// Double uses dbl-2008-hwcd.
func (p *Point[T]) Double() *Point[T] {
	f := p.c.f
	A := f.Sqr(p.x)
	B := f.Sqr(p.y)
	C := f.Add(f.Sqr(p.z), f.Sqr(p.z))
	D := f.Mul(p.c.cfg.A, A)
	x1y1 := f.Add(p.x, p.y)
	E := f.Sub(f.Sub(f.Sqr(x1y1), A), B)
	G := f.Add(D, B)
	F := f.Sub(G, C)
	H := f.Sub(D, B)
	return &Point[T]{c: p.c, x: f.Mul(E, F), y: f.Mul(G, H), z: f.Mul(F, G), t: f.Mul(E, H)}
}

// Add uses add-2008-hwcd, which is complete for curves whose a is a
// square and d is not.
func (p *Point[T]) Add(q *Point[T]) *Point[T] {
	f := p.c.f
	A := f.Mul(p.x, q.x)
	B := f.Mul(p.y, q.y)
	C := f.Mul(f.Mul(p.t, p.c.cfg.D), q.t)
	D := f.Mul(p.z, q.z)
	E := f.Sub(f.Sub(f.Mul(f.Add(p.x, p.y), f.Add(q.x, q.y)), A), B)
	F := f.Sub(D, C)
	G := f.Add(D, C)
	H := f.Sub(B, f.Mul(p.c.cfg.A, A))
	return &Point[T]{c: p.c, x: f.Mul(E, F), y: f.Mul(G, H), z: f.Mul(F, G), t: f.Mul(E, H)}
}

// Subtract returns p - q.
func (p *Point[T]) Subtract(q *Point[T]) *Point[T] { return p.Add(q.Negate()) }

// Multiply returns k·p for k in [1, n) with a scalar-independent
// operation sequence.
func (p *Point[T]) Multiply(k *big.Int) (*Point[T], error) {
	c := p.c
	if !c.fn.IsValidNot0(k) {
		return nil, errors.Wrap(ErrScalarOutOfRange, "expected 1 <= k < n")
	}
	point, fake := c.engine.Multiply(p, k)
	return c.NormalizeZ([]*Point[T]{point, fake})[0], nil
}

// MultiplyUnsafe returns k·p for k in [0, n) in variable time.
func (p *Point[T]) MultiplyUnsafe(k *big.Int) (*Point[T], error) {
	c := p.c
	if !c.fn.IsValid(k) {
		return nil, errors.Wrap(ErrScalarOutOfRange, "expected 0 <= k < n")
	}
	if k.Sign() == 0 {
		return c.zero, nil
	}
	if p.IsZero() || k.Cmp(big.NewInt(1)) == 0 {
		return p, nil
	}
	return c.engine.MultiplyUnsafe(p, k, c.zero), nil
}

func (p *Point[T]) mulUnchecked(k *big.Int) *Point[T] {
	return wnaf.MultiplyDoubleAdd[*Point[T]](group[T]{p.c}, p, k)
}

// IsSmallOrder reports whether h·p is the identity.
func (p *Point[T]) IsSmallOrder() bool { return p.mulUnchecked(p.c.cfg.H).IsZero() }

// IsTorsionFree reports whether n·p is the identity.
func (p *Point[T]) IsTorsionFree() bool { return p.mulUnchecked(p.c.cfg.N).IsZero() }

// ClearCofactor returns h·p.
func (p *Point[T]) ClearCofactor() *Point[T] {
	if p.c.cfg.H.Cmp(big.NewInt(1)) == 0 {
		return p
	}
	return p.mulUnchecked(p.c.cfg.H)
}

// Precompute builds a wNAF table of window w for p.
func (p *Point[T]) Precompute(w int) error {
	return errors.WithStack(p.c.engine.Precompute(p, w))
}

// ToBytes encodes y little-endian with the sign of x in the top bit of
// the last byte (RFC 8032 5.1.2).
func (p *Point[T]) ToBytes() []byte {
	f := p.c.f
	x, y := p.ToAffine()
	b := f.Encode(y)
	if f.IsOdd(x) {
		b[len(b)-1] |= 0x80
	}
	return b
}

// FromBytes decodes a point. With zip215 set, y may be any value below
// 2^(8·len) and x = 0 with the sign bit set is accepted, matching ZIP 215;
// otherwise y must be canonical as in RFC 8032. The result is on the
// curve but not necessarily in the prime-order subgroup.
func (c *Curve[T]) FromBytes(b []byte, zip215 bool) (*Point[T], error) {
	f := c.f
	n := f.ByteLen()
	if len(b) != n {
		return nil, errors.Wrapf(ErrInvalidEncoding, "expected %d bytes, got %d", n, len(b))
	}
	normed := append([]byte{}, b...)
	last := b[n-1]
	normed[n-1] = last &^ 0x80
	yInt := new(big.Int).SetBytes(reversed(normed))

	bound := f.Order()
	if zip215 {
		bound = c.mask
	}
	if yInt.Cmp(bound) >= 0 {
		return nil, errors.Wrap(ErrInvalidEncoding, "y out of range")
	}
	y := f.FromBig(yInt)

	// x² = (y² - 1) / (d·y² - a)
	y2 := f.Sqr(y)
	u := f.Sub(y2, f.One())
	v := f.Sub(f.Mul(c.cfg.D, y2), c.cfg.A)
	r := c.cfg.UVRatio(u, v)
	if !r.IsValid {
		return nil, errors.Wrap(ErrNotOnCurve, "invalid y coordinate")
	}
	x := r.Value
	lastOdd := last&0x80 != 0
	if !zip215 && f.IsZero(x) && lastOdd {
		return nil, errors.Wrap(ErrInvalidEncoding, "x = 0 with sign bit set")
	}
	if f.IsOdd(x) != lastOdd {
		x = f.Neg(x)
	}
	return c.fromAffine(x, y), nil
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
