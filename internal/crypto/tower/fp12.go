package tower

import (
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/crypto/field"
)

// Fp12 is c0 + c1·w.
type Fp12[T any] struct {
	C0, C1 Fp6[T]
}

// Fp12Field is the quadratic extension of Fp6 by w² = v, the target field
// of pairings on BLS12 curves.
type Fp12Field[T any] struct {
	fp6 *Fp6Field[T]
	// ξ^((p^j-1)/6)
	frob [12]Fp2[T]
}

// New builds the full tower over base with ξ = k + u.
func New[T any](base field.Field[T], k uint64) *Fp12Field[T] {
	fp2 := NewFp2(base, k)
	fp6 := NewFp6(fp2)
	f := &Fp12Field[T]{fp6: fp6}
	copy(f.frob[:], frobeniusCoefficients(fp2, 12, 1, 6)[0])
	logrus.WithFields(logrus.Fields{"pkg": "tower", "bits": base.BitLen()}).Debug("fp12 tower initialized")
	return f
}

// Fp6 returns the cubic subfield.
func (f *Fp12Field[T]) Fp6() *Fp6Field[T] { return f.fp6 }

// Fp2 returns the quadratic subfield.
func (f *Fp12Field[T]) Fp2() *Fp2Field[T] { return f.fp6.fp2 }

func (f *Fp12Field[T]) Zero() Fp12[T] {
	return Fp12[T]{C0: f.fp6.Zero(), C1: f.fp6.Zero()}
}

func (f *Fp12Field[T]) One() Fp12[T] {
	return Fp12[T]{C0: f.fp6.One(), C1: f.fp6.Zero()}
}

func (f *Fp12Field[T]) Add(a, b Fp12[T]) Fp12[T] {
	return Fp12[T]{C0: f.fp6.Add(a.C0, b.C0), C1: f.fp6.Add(a.C1, b.C1)}
}

func (f *Fp12Field[T]) Sub(a, b Fp12[T]) Fp12[T] {
	return Fp12[T]{C0: f.fp6.Sub(a.C0, b.C0), C1: f.fp6.Sub(a.C1, b.C1)}
}

func (f *Fp12Field[T]) Neg(a Fp12[T]) Fp12[T] {
	return Fp12[T]{C0: f.fp6.Neg(a.C0), C1: f.fp6.Neg(a.C1)}
}

func (f *Fp12Field[T]) Mul(a, b Fp12[T]) Fp12[T] {
	k := f.fp6
	t1 := k.Mul(a.C0, b.C0)
	t2 := k.Mul(a.C1, b.C1)
	return Fp12[T]{
		C0: k.Add(t1, k.MulByNonresidue(t2)),
		C1: k.Sub(k.Mul(k.Add(a.C0, a.C1), k.Add(b.C0, b.C1)), k.Add(t1, t2)),
	}
}

func (f *Fp12Field[T]) Sqr(a Fp12[T]) Fp12[T] {
	k := f.fp6
	ab := k.Mul(a.C0, a.C1)
	return Fp12[T]{
		C0: k.Sub(k.Sub(k.Mul(k.Add(k.MulByNonresidue(a.C1), a.C0), k.Add(a.C0, a.C1)), ab), k.MulByNonresidue(ab)),
		C1: k.Add(ab, ab),
	}
}

func (f *Fp12Field[T]) Inv(a Fp12[T]) Fp12[T] {
	k := f.fp6
	t := k.Inv(k.Sub(k.Sqr(a.C0), k.MulByNonresidue(k.Sqr(a.C1))))
	return Fp12[T]{C0: k.Mul(a.C0, t), C1: k.Neg(k.Mul(a.C1, t))}
}

func (f *Fp12Field[T]) Div(a, b Fp12[T]) Fp12[T] { return f.Mul(a, f.Inv(b)) }

// Pow is plain square-and-multiply; use CyclotomicExp for elements of the
// cyclotomic subgroup.
func (f *Fp12Field[T]) Pow(a Fp12[T], e *big.Int) Fp12[T] {
	res := f.One()
	for i := e.BitLen() - 1; i >= 0; i-- {
		res = f.Sqr(res)
		if e.Bit(i) == 1 {
			res = f.Mul(res, a)
		}
	}
	return res
}

// Conjugate returns c0 - c1·w, which is the inverse for unitary elements.
func (f *Fp12Field[T]) Conjugate(a Fp12[T]) Fp12[T] {
	return Fp12[T]{C0: a.C0, C1: f.fp6.Neg(a.C1)}
}

func (f *Fp12Field[T]) FrobeniusMap(a Fp12[T], power int) Fp12[T] {
	k := f.fp6
	c1 := k.FrobeniusMap(a.C1, power)
	return Fp12[T]{
		C0: k.FrobeniusMap(a.C0, power),
		C1: k.MulByFp2(c1, f.frob[power%12]),
	}
}

// Mul014 multiplies by the sparse element o0 + o1·v + o4·v·w.
func (f *Fp12Field[T]) Mul014(a Fp12[T], o0, o1, o4 Fp2[T]) Fp12[T] {
	k := f.fp6
	t0 := k.Mul01(a.C0, o0, o1)
	t1 := k.Mul1(a.C1, o4)
	return Fp12[T]{
		C0: k.Add(k.MulByNonresidue(t1), t0),
		// (c1 + c0)·(o0 + (o1+o4)·v) - t0 - t1
		C1: k.Sub(k.Sub(k.Mul01(k.Add(a.C1, a.C0), o0, f.fp6.fp2.Add(o1, o4)), t0), t1),
	}
}

// Mul034 multiplies by the sparse element o0 + o3·w + o4·v·w.
func (f *Fp12Field[T]) Mul034(a Fp12[T], o0, o3, o4 Fp2[T]) Fp12[T] {
	k := f.fp6
	x := k.MulByFp2(a.C0, o0)
	y := k.Mul01(a.C1, o3, o4)
	e := k.Mul01(k.Add(a.C0, a.C1), f.fp6.fp2.Add(o0, o3), o4)
	return Fp12[T]{
		C0: k.Add(k.MulByNonresidue(y), x),
		C1: k.Sub(e, k.Add(x, y)),
	}
}

// CyclotomicSquare squares an element of the cyclotomic subgroup using
// the Granger-Scott formulas. The result is wrong for other elements.
func (f *Fp12Field[T]) CyclotomicSquare(a Fp12[T]) Fp12[T] {
	k := f.fp6.fp2
	c0c0, c0c1, c0c2 := a.C0.C0, a.C0.C1, a.C0.C2
	c1c0, c1c1, c1c2 := a.C1.C0, a.C1.C1, a.C1.C2
	t3, t4 := k.Fp4Square(c0c0, c1c1)
	t5, t6 := k.Fp4Square(c1c0, c0c2)
	t7, t8 := k.Fp4Square(c0c1, c1c2)
	t9 := k.MulByNonresidue(t8)
	return Fp12[T]{
		C0: Fp6[T]{
			C0: k.Add(k.Double(k.Sub(t3, c0c0)), t3),
			C1: k.Add(k.Double(k.Sub(t5, c0c1)), t5),
			C2: k.Add(k.Double(k.Sub(t7, c0c2)), t7),
		},
		C1: Fp6[T]{
			C0: k.Add(k.Double(k.Add(t9, c1c0)), t9),
			C1: k.Add(k.Double(k.Add(t4, c1c1)), t4),
			C2: k.Add(k.Double(k.Add(t6, c1c2)), t6),
		},
	}
}

// CyclotomicExp raises a cyclotomic element to n, most significant bit
// first.
func (f *Fp12Field[T]) CyclotomicExp(a Fp12[T], n *big.Int) Fp12[T] {
	z := f.One()
	for i := n.BitLen() - 1; i >= 0; i-- {
		z = f.CyclotomicSquare(z)
		if n.Bit(i) == 1 {
			z = f.Mul(z, a)
		}
	}
	return z
}

func (f *Fp12Field[T]) Equal(a, b Fp12[T]) bool {
	return f.fp6.Equal(a.C0, b.C0) && f.fp6.Equal(a.C1, b.C1)
}

func (f *Fp12Field[T]) IsOne(a Fp12[T]) bool { return f.Equal(a, f.One()) }

// Encode writes the twelve base coefficients in tower order.
func (f *Fp12Field[T]) Encode(a Fp12[T]) []byte {
	return append(f.fp6.Encode(a.C0), f.fp6.Encode(a.C1)...)
}
