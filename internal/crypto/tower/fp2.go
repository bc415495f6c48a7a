// Package tower builds the quadratic, sextic and dodecic extensions used by
// pairing-friendly curves on top of any prime field provider:
//
//	Fp2  = Fp[u]  / (u² + 1)
//	Fp6  = Fp2[v] / (v³ - ξ),  ξ = k + u
//	Fp12 = Fp6[w] / (w² - v)
//
// The base prime must be 3 mod 4 so that -1 is a quadratic non-residue.
package tower

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/field"
)

// ErrInvalidEncoding is returned when an extension element cannot be
// decoded.
var ErrInvalidEncoding = errors.New("tower: invalid encoding")

// Fp2 is c0 + c1·u.
type Fp2[T any] struct {
	C0, C1 T
}

// Fp2Field implements field.Field for Fp2 elements.
type Fp2Field[T any] struct {
	base  field.Field[T]
	p     *big.Int
	order *big.Int
	// ξ = k + u, the cubic non-residue used by Fp6
	xi   Fp2[T]
	k    T
	frob [2]T
	half T
	// toBig reads a base element as an integer for root normalization
	toBig func(T) *big.Int
}

// NewFp2 returns the quadratic extension of base with ξ = k + u. The base
// field encoding must be big-endian.
func NewFp2[T any](base field.Field[T], k uint64) *Fp2Field[T] {
	p := base.Order()
	if new(big.Int).Mod(p, big.NewInt(4)).Int64() != 3 {
		panic("tower: base modulus must be 3 mod 4")
	}
	f := &Fp2Field[T]{
		base:  base,
		p:     p,
		order: new(big.Int).Mul(p, p),
		k:     base.FromUint64(k),
		half:  base.Inv(base.FromUint64(2)),
		toBig: func(a T) *big.Int { return new(big.Int).SetBytes(base.Encode(a)) },
	}
	f.xi = Fp2[T]{C0: f.k, C1: base.One()}
	// (-1)^((p^j - 1)/2) for j = 0, 1
	minusOne := base.Neg(base.One())
	pj := big.NewInt(1)
	for j := 0; j < 2; j++ {
		e := new(big.Int).Sub(pj, big.NewInt(1))
		e.Rsh(e, 1)
		e.Mod(e, new(big.Int).Sub(p, big.NewInt(1)))
		f.frob[j] = base.Pow(minusOne, e)
		pj.Mul(pj, p)
	}
	return f
}

// Base returns the underlying prime field.
func (f *Fp2Field[T]) Base() field.Field[T] { return f.base }

// Nonresidue returns ξ.
func (f *Fp2Field[T]) Nonresidue() Fp2[T] { return f.xi }

func (f *Fp2Field[T]) Order() *big.Int { return new(big.Int).Set(f.order) }
func (f *Fp2Field[T]) BitLen() int     { return f.base.BitLen() }
func (f *Fp2Field[T]) ByteLen() int    { return 2 * f.base.ByteLen() }

func (f *Fp2Field[T]) Zero() Fp2[T] { return Fp2[T]{C0: f.base.Zero(), C1: f.base.Zero()} }
func (f *Fp2Field[T]) One() Fp2[T]  { return Fp2[T]{C0: f.base.One(), C1: f.base.Zero()} }

func (f *Fp2Field[T]) FromUint64(v uint64) Fp2[T] {
	return Fp2[T]{C0: f.base.FromUint64(v), C1: f.base.Zero()}
}

func (f *Fp2Field[T]) FromBig(v *big.Int) Fp2[T] {
	return Fp2[T]{C0: f.base.FromBig(v), C1: f.base.Zero()}
}

// FromBigs returns c0 + c1·u.
func (f *Fp2Field[T]) FromBigs(c0, c1 *big.Int) Fp2[T] {
	return Fp2[T]{C0: f.base.FromBig(c0), C1: f.base.FromBig(c1)}
}

func (f *Fp2Field[T]) Add(a, b Fp2[T]) Fp2[T] {
	return Fp2[T]{C0: f.base.Add(a.C0, b.C0), C1: f.base.Add(a.C1, b.C1)}
}

func (f *Fp2Field[T]) Sub(a, b Fp2[T]) Fp2[T] {
	return Fp2[T]{C0: f.base.Sub(a.C0, b.C0), C1: f.base.Sub(a.C1, b.C1)}
}

func (f *Fp2Field[T]) Neg(a Fp2[T]) Fp2[T] {
	return Fp2[T]{C0: f.base.Neg(a.C0), C1: f.base.Neg(a.C1)}
}

func (f *Fp2Field[T]) Double(a Fp2[T]) Fp2[T] { return f.Add(a, a) }

// Mul uses Karatsuba: three base multiplications.
func (f *Fp2Field[T]) Mul(a, b Fp2[T]) Fp2[T] {
	b0 := f.base
	t1 := b0.Mul(a.C0, b.C0)
	t2 := b0.Mul(a.C1, b.C1)
	o1 := b0.Sub(b0.Mul(b0.Add(a.C0, a.C1), b0.Add(b.C0, b.C1)), b0.Add(t1, t2))
	return Fp2[T]{C0: b0.Sub(t1, t2), C1: o1}
}

// MulByBase multiplies both coefficients by s.
func (f *Fp2Field[T]) MulByBase(a Fp2[T], s T) Fp2[T] {
	return Fp2[T]{C0: f.base.Mul(a.C0, s), C1: f.base.Mul(a.C1, s)}
}

// Sqr computes (c0+c1)(c0-c1) + 2c0c1·u.
func (f *Fp2Field[T]) Sqr(a Fp2[T]) Fp2[T] {
	b := f.base
	x := b.Add(a.C0, a.C1)
	y := b.Sub(a.C0, a.C1)
	z := b.Add(a.C0, a.C0)
	return Fp2[T]{C0: b.Mul(x, y), C1: b.Mul(z, a.C1)}
}

func (f *Fp2Field[T]) Inv(a Fp2[T]) Fp2[T] {
	b := f.base
	factor := b.Inv(b.Add(b.Sqr(a.C0), b.Sqr(a.C1)))
	return Fp2[T]{C0: b.Mul(factor, a.C0), C1: b.Neg(b.Mul(factor, a.C1))}
}

func (f *Fp2Field[T]) Div(a, b Fp2[T]) Fp2[T] { return f.Mul(a, f.Inv(b)) }

func (f *Fp2Field[T]) Pow(a Fp2[T], e *big.Int) Fp2[T] {
	return field.Pow[Fp2[T]](f, a, e)
}

// MulByNonresidue multiplies by ξ = k + u.
func (f *Fp2Field[T]) MulByNonresidue(a Fp2[T]) Fp2[T] {
	b := f.base
	return Fp2[T]{
		C0: b.Sub(b.Mul(a.C0, f.k), a.C1),
		C1: b.Add(a.C0, b.Mul(a.C1, f.k)),
	}
}

// Conjugate returns c0 - c1·u.
func (f *Fp2Field[T]) Conjugate(a Fp2[T]) Fp2[T] {
	return Fp2[T]{C0: a.C0, C1: f.base.Neg(a.C1)}
}

// FrobeniusMap raises a to p^power.
func (f *Fp2Field[T]) FrobeniusMap(a Fp2[T], power int) Fp2[T] {
	return Fp2[T]{C0: a.C0, C1: f.base.Mul(a.C1, f.frob[power%2])}
}

// Fp4Square squares a + b·X in Fp4 = Fp2[X]/(X² - ξ).
func (f *Fp2Field[T]) Fp4Square(a, b Fp2[T]) (Fp2[T], Fp2[T]) {
	a2 := f.Sqr(a)
	b2 := f.Sqr(b)
	first := f.Add(f.MulByNonresidue(b2), a2)
	second := f.Sub(f.Sub(f.Sqr(f.Add(a, b)), a2), b2)
	return first, second
}

// Sqrt returns the root with the larger imaginary part, or the larger
// real part when the imaginary parts tie.
func (f *Fp2Field[T]) Sqrt(a Fp2[T]) field.Result[Fp2[T]] {
	b := f.base
	invalid := field.Result[Fp2[T]]{Value: f.Zero()}
	if b.IsZero(a.C1) {
		if field.Legendre(b, a.C0) == 1 {
			r := b.Sqrt(a.C0)
			return field.Result[Fp2[T]]{Value: Fp2[T]{C0: r.Value, C1: b.Zero()}, IsValid: true}
		}
		// c0 / -1
		r := b.Sqrt(b.Neg(a.C0))
		if !r.IsValid {
			return invalid
		}
		return field.Result[Fp2[T]]{Value: Fp2[T]{C0: b.Zero(), C1: r.Value}, IsValid: true}
	}
	norm := b.Sqrt(b.Add(b.Sqr(a.C0), b.Sqr(a.C1)))
	if !norm.IsValid {
		return invalid
	}
	d := b.Mul(b.Add(norm.Value, a.C0), f.half)
	if field.Legendre(b, d) == -1 {
		d = b.Sub(d, norm.Value)
	}
	a0 := b.Sqrt(d)
	if !a0.IsValid || b.IsZero(a0.Value) {
		return invalid
	}
	x1 := Fp2[T]{C0: a0.Value, C1: b.Div(b.Mul(a.C1, f.half), a0.Value)}
	if !f.Equal(f.Sqr(x1), a) {
		return invalid
	}
	x2 := f.Neg(x1)
	re1, im1 := f.toBig(x1.C0), f.toBig(x1.C1)
	re2, im2 := f.toBig(x2.C0), f.toBig(x2.C1)
	if c := im1.Cmp(im2); c > 0 || (c == 0 && re1.Cmp(re2) > 0) {
		return field.Result[Fp2[T]]{Value: x1, IsValid: true}
	}
	return field.Result[Fp2[T]]{Value: x2, IsValid: true}
}

func (f *Fp2Field[T]) Equal(a, b Fp2[T]) bool {
	return f.base.Equal(a.C0, b.C0) && f.base.Equal(a.C1, b.C1)
}

func (f *Fp2Field[T]) IsZero(a Fp2[T]) bool {
	return f.base.IsZero(a.C0) && f.base.IsZero(a.C1)
}

// IsOdd is sgn0 for m = 2 (RFC 9380 section 4.1).
func (f *Fp2Field[T]) IsOdd(a Fp2[T]) bool {
	sign0 := f.base.IsOdd(a.C0)
	zero0 := f.base.IsZero(a.C0)
	sign1 := f.base.IsOdd(a.C1)
	return sign0 || (zero0 && sign1)
}

func (f *Fp2Field[T]) CMov(a, b Fp2[T], c bool) Fp2[T] {
	return Fp2[T]{C0: f.base.CMov(a.C0, b.C0, c), C1: f.base.CMov(a.C1, b.C1, c)}
}

// Encode writes c0 || c1.
func (f *Fp2Field[T]) Encode(a Fp2[T]) []byte {
	out := make([]byte, 0, f.ByteLen())
	out = append(out, f.base.Encode(a.C0)...)
	return append(out, f.base.Encode(a.C1)...)
}

func (f *Fp2Field[T]) Decode(b []byte) (Fp2[T], error) {
	n := f.base.ByteLen()
	if len(b) != 2*n {
		return f.Zero(), errors.Wrapf(ErrInvalidEncoding, "expected %d bytes, got %d", 2*n, len(b))
	}
	c0, err := f.base.Decode(b[:n])
	if err != nil {
		return f.Zero(), errors.Wrap(err, "c0")
	}
	c1, err := f.base.Decode(b[n:])
	if err != nil {
		return f.Zero(), errors.Wrap(err, "c1")
	}
	return Fp2[T]{C0: c0, C1: c1}, nil
}
