package weierstrass

import (
	"sync"

	"github.com/pkg/errors"
)

// Point is an immutable point in projective coordinates (X, Y, Z), with
// affine x = X/Z and y = Y/Z. The identity is any point with Z = 0.
type Point[T any] struct {
	c       *Curve[T]
	x, y, z T

	affineOnce sync.Once
	ax, ay     T

	validOnce sync.Once
	validErr  error

	extra sync.Map // any -> *lazy
}

type lazy struct {
	once sync.Once
	v    any
}

// Curve returns the curve p belongs to.
func (p *Point[T]) Curve() *Curve[T] { return p.c }

// Projective returns the raw coordinates.
func (p *Point[T]) Projective() (x, y, z T) { return p.x, p.y, p.z }

// Memo computes fn once per key and caches the value on p. It is used to
// attach derived data such as pairing precomputations.
func (p *Point[T]) Memo(key any, fn func() any) any {
	v, _ := p.extra.LoadOrStore(key, &lazy{})
	l := v.(*lazy)
	l.once.Do(func() { l.v = fn() })
	return l.v
}

// IsZero reports whether p is the identity.
func (p *Point[T]) IsZero() bool { return p.c.f.IsZero(p.z) }

// Equal compares projective points by cross-multiplication.
func (p *Point[T]) Equal(q *Point[T]) bool {
	f := p.c.f
	return f.Equal(f.Mul(p.x, q.z), f.Mul(q.x, p.z)) &&
		f.Equal(f.Mul(p.y, q.z), f.Mul(q.y, p.z))
}

// ToAffine returns (x, y). The identity maps to (0, 0). The result is
// cached on the point.
func (p *Point[T]) ToAffine() (T, T) {
	p.affineOnce.Do(func() {
		f := p.c.f
		switch {
		case p.IsZero():
			p.ax, p.ay = f.Zero(), f.Zero()
		case f.Equal(p.z, f.One()):
			p.ax, p.ay = p.x, p.y
		default:
			iz := f.Inv(p.z)
			p.ax, p.ay = f.Mul(p.x, iz), f.Mul(p.y, iz)
		}
	})
	return p.ax, p.ay
}

// AssertValidity checks that p is on the curve and in the prime-order
// subgroup. The identity is rejected unless the curve allows it. The
// result is cached on the point.
func (p *Point[T]) AssertValidity() error {
	p.validOnce.Do(func() { p.validErr = p.validate() })
	return p.validErr
}

func (p *Point[T]) validate() error {
	c := p.c
	if p.IsZero() {
		// (0, 0, 0) is never the identity
		if c.cfg.AllowInfinity && !c.f.IsZero(p.y) {
			return nil
		}
		return ErrIdentity
	}
	x, y := p.ToAffine()
	if !c.isValidXY(x, y) {
		return ErrNotOnCurve
	}
	if !p.IsTorsionFree() {
		return ErrNotInSubgroup
	}
	return nil
}

// Negate returns -p.
func (p *Point[T]) Negate() *Point[T] {
	return &Point[T]{c: p.c, x: p.x, y: p.c.f.Neg(p.y), z: p.z}
}

func (p *Point[T]) cnegate(c bool) *Point[T] {
	f := p.c.f
	return &Point[T]{c: p.c, x: p.x, y: f.CMov(p.y, f.Neg(p.y), c), z: p.z}
}

// Double returns 2p using Algorithm 3 of Renes-Costello-Batina. It is
// complete for every input, including the identity.
func (p *Point[T]) Double() *Point[T] {
	f := p.c.f
	a, b3 := p.c.cfg.A, p.c.b3
	X1, Y1, Z1 := p.x, p.y, p.z

	t0 := f.Mul(X1, X1)
	t1 := f.Mul(Y1, Y1)
	t2 := f.Mul(Z1, Z1)
	t3 := f.Mul(X1, Y1)
	t3 = f.Add(t3, t3)
	Z3 := f.Mul(X1, Z1)
	Z3 = f.Add(Z3, Z3)
	X3 := f.Mul(a, Z3)
	Y3 := f.Mul(b3, t2)
	Y3 = f.Add(X3, Y3)
	X3 = f.Sub(t1, Y3)
	Y3 = f.Add(t1, Y3)
	Y3 = f.Mul(X3, Y3)
	X3 = f.Mul(t3, X3)
	Z3 = f.Mul(b3, Z3)
	t2 = f.Mul(a, t2)
	t3 = f.Sub(t0, t2)
	t3 = f.Mul(a, t3)
	t3 = f.Add(t3, Z3)
	Z3 = f.Add(t0, t0)
	t0 = f.Add(Z3, t0)
	t0 = f.Add(t0, t2)
	t0 = f.Mul(t0, t3)
	Y3 = f.Add(Y3, t0)
	t2 = f.Mul(Y1, Z1)
	t2 = f.Add(t2, t2)
	t0 = f.Mul(t2, t3)
	X3 = f.Sub(X3, t0)
	Z3 = f.Mul(t2, t1)
	Z3 = f.Add(Z3, Z3)
	Z3 = f.Add(Z3, Z3)
	return &Point[T]{c: p.c, x: X3, y: Y3, z: Z3}
}

// Add returns p + q using Algorithm 1 of Renes-Costello-Batina. It is
// complete: no special case for the identity or for p = q.
func (p *Point[T]) Add(q *Point[T]) *Point[T] {
	f := p.c.f
	a, b3 := p.c.cfg.A, p.c.b3
	X1, Y1, Z1 := p.x, p.y, p.z
	X2, Y2, Z2 := q.x, q.y, q.z

	t0 := f.Mul(X1, X2)
	t1 := f.Mul(Y1, Y2)
	t2 := f.Mul(Z1, Z2)
	t3 := f.Add(X1, Y1)
	t4 := f.Add(X2, Y2)
	t3 = f.Mul(t3, t4)
	t4 = f.Add(t0, t1)
	t3 = f.Sub(t3, t4)
	t4 = f.Add(X1, Z1)
	t5 := f.Add(X2, Z2)
	t4 = f.Mul(t4, t5)
	t5 = f.Add(t0, t2)
	t4 = f.Sub(t4, t5)
	t5 = f.Add(Y1, Z1)
	X3 := f.Add(Y2, Z2)
	t5 = f.Mul(t5, X3)
	X3 = f.Add(t1, t2)
	t5 = f.Sub(t5, X3)
	Z3 := f.Mul(a, t4)
	X3 = f.Mul(b3, t2)
	Z3 = f.Add(X3, Z3)
	X3 = f.Sub(t1, Z3)
	Z3 = f.Add(t1, Z3)
	Y3 := f.Mul(X3, Z3)
	t1 = f.Add(t0, t0)
	t1 = f.Add(t1, t0)
	t2 = f.Mul(a, t2)
	t4 = f.Mul(b3, t4)
	t1 = f.Add(t1, t2)
	t2 = f.Sub(t0, t2)
	t2 = f.Mul(a, t2)
	t4 = f.Add(t4, t2)
	t0 = f.Mul(t1, t4)
	Y3 = f.Add(Y3, t0)
	t0 = f.Mul(t5, t4)
	X3 = f.Mul(t3, X3)
	X3 = f.Sub(X3, t0)
	t0 = f.Mul(t3, t1)
	Z3 = f.Mul(t5, Z3)
	Z3 = f.Add(Z3, t0)
	return &Point[T]{c: p.c, x: X3, y: Y3, z: Z3}
}

// Subtract returns p - q.
func (p *Point[T]) Subtract(q *Point[T]) *Point[T] { return p.Add(q.Negate()) }

// mulX returns (β·X, Y, Z).
func (p *Point[T]) mulX(beta T) *Point[T] {
	return &Point[T]{c: p.c, x: p.c.f.Mul(p.x, beta), y: p.y, z: p.z}
}

// Precompute registers a wNAF table of window w for p and builds it.
func (p *Point[T]) Precompute(w int) error {
	return errors.WithStack(p.c.engine.Precompute(p, w))
}
