package tower

import (
	"math/big"
)

// Fp6 is c0 + c1·v + c2·v².
type Fp6[T any] struct {
	C0, C1, C2 Fp2[T]
}

// Fp6Field is the cubic extension of Fp2 by v³ = ξ.
type Fp6Field[T any] struct {
	fp2 *Fp2Field[T]
	// ξ^((p^j-1)/3) and ξ^((2p^j-2)/3)
	frobC1 [6]Fp2[T]
	frobC2 [6]Fp2[T]
}

// NewFp6 builds the sextic extension over fp2 and its Frobenius constants.
func NewFp6[T any](fp2 *Fp2Field[T]) *Fp6Field[T] {
	f := &Fp6Field[T]{fp2: fp2}
	c := frobeniusCoefficients(fp2, 6, 2, 3)
	copy(f.frobC1[:], c[0])
	copy(f.frobC2[:], c[1])
	return f
}

// frobeniusCoefficients returns ξ^((a·p^j - a)/div) for a in [1, num] and
// j in [0, degree). Exponents are reduced modulo p²-1, the order of Fp2*.
func frobeniusCoefficients[T any](fp2 *Fp2Field[T], degree, num, div int) [][]Fp2[T] {
	p := fp2.p
	groupOrder := new(big.Int).Sub(fp2.order, big.NewInt(1))
	res := make([][]Fp2[T], num)
	for i := 0; i < num; i++ {
		a := big.NewInt(int64(i + 1))
		powers := make([]Fp2[T], degree)
		qPower := big.NewInt(1)
		for j := 0; j < degree; j++ {
			e := new(big.Int).Mul(a, qPower)
			e.Sub(e, a)
			e.Quo(e, big.NewInt(int64(div)))
			e.Mod(e, groupOrder)
			powers[j] = fp2.Pow(fp2.xi, e)
			qPower.Mul(qPower, p)
		}
		res[i] = powers
	}
	return res
}

// Fp2 returns the quadratic subfield.
func (f *Fp6Field[T]) Fp2() *Fp2Field[T] { return f.fp2 }

func (f *Fp6Field[T]) Zero() Fp6[T] {
	z := f.fp2.Zero()
	return Fp6[T]{C0: z, C1: z, C2: z}
}

func (f *Fp6Field[T]) One() Fp6[T] {
	z := f.fp2.Zero()
	return Fp6[T]{C0: f.fp2.One(), C1: z, C2: z}
}

func (f *Fp6Field[T]) Add(a, b Fp6[T]) Fp6[T] {
	k := f.fp2
	return Fp6[T]{C0: k.Add(a.C0, b.C0), C1: k.Add(a.C1, b.C1), C2: k.Add(a.C2, b.C2)}
}

func (f *Fp6Field[T]) Sub(a, b Fp6[T]) Fp6[T] {
	k := f.fp2
	return Fp6[T]{C0: k.Sub(a.C0, b.C0), C1: k.Sub(a.C1, b.C1), C2: k.Sub(a.C2, b.C2)}
}

func (f *Fp6Field[T]) Neg(a Fp6[T]) Fp6[T] {
	k := f.fp2
	return Fp6[T]{C0: k.Neg(a.C0), C1: k.Neg(a.C1), C2: k.Neg(a.C2)}
}

func (f *Fp6Field[T]) Mul(a, b Fp6[T]) Fp6[T] {
	k := f.fp2
	t0 := k.Mul(a.C0, b.C0)
	t1 := k.Mul(a.C1, b.C1)
	t2 := k.Mul(a.C2, b.C2)
	return Fp6[T]{
		// t0 + ((c1+c2)(r1+r2) - t1 - t2)·ξ
		C0: k.Add(t0, k.MulByNonresidue(k.Sub(k.Mul(k.Add(a.C1, a.C2), k.Add(b.C1, b.C2)), k.Add(t1, t2)))),
		// (c0+c1)(r0+r1) - t0 - t1 + t2·ξ
		C1: k.Add(k.Sub(k.Mul(k.Add(a.C0, a.C1), k.Add(b.C0, b.C1)), k.Add(t0, t1)), k.MulByNonresidue(t2)),
		// t1 + (c0+c2)(r0+r2) - t0 - t2
		C2: k.Sub(k.Add(t1, k.Mul(k.Add(a.C0, a.C2), k.Add(b.C0, b.C2))), k.Add(t0, t2)),
	}
}

// MulByFp2 multiplies every coefficient by s.
func (f *Fp6Field[T]) MulByFp2(a Fp6[T], s Fp2[T]) Fp6[T] {
	k := f.fp2
	return Fp6[T]{C0: k.Mul(a.C0, s), C1: k.Mul(a.C1, s), C2: k.Mul(a.C2, s)}
}

func (f *Fp6Field[T]) Sqr(a Fp6[T]) Fp6[T] {
	k := f.fp2
	t0 := k.Sqr(a.C0)
	t1 := k.Double(k.Mul(a.C0, a.C1))
	t3 := k.Double(k.Mul(a.C1, a.C2))
	t4 := k.Sqr(a.C2)
	return Fp6[T]{
		C0: k.Add(k.MulByNonresidue(t3), t0),
		C1: k.Add(k.MulByNonresidue(t4), t1),
		// t1 + (c0 - c1 + c2)² + t3 - t0 - t4
		C2: k.Sub(k.Sub(k.Add(k.Add(t1, k.Sqr(k.Add(k.Sub(a.C0, a.C1), a.C2))), t3), t0), t4),
	}
}

func (f *Fp6Field[T]) Inv(a Fp6[T]) Fp6[T] {
	k := f.fp2
	t0 := k.Sub(k.Sqr(a.C0), k.MulByNonresidue(k.Mul(a.C2, a.C1)))
	t1 := k.Sub(k.MulByNonresidue(k.Sqr(a.C2)), k.Mul(a.C0, a.C1))
	t2 := k.Sub(k.Sqr(a.C1), k.Mul(a.C0, a.C2))
	t4 := k.Inv(k.Add(k.MulByNonresidue(k.Add(k.Mul(a.C2, t1), k.Mul(a.C1, t2))), k.Mul(a.C0, t0)))
	return Fp6[T]{C0: k.Mul(t4, t0), C1: k.Mul(t4, t1), C2: k.Mul(t4, t2)}
}

// MulByNonresidue multiplies by v.
func (f *Fp6Field[T]) MulByNonresidue(a Fp6[T]) Fp6[T] {
	return Fp6[T]{C0: f.fp2.MulByNonresidue(a.C2), C1: a.C0, C2: a.C1}
}

// Mul1 multiplies by the sparse element b1·v.
func (f *Fp6Field[T]) Mul1(a Fp6[T], b1 Fp2[T]) Fp6[T] {
	k := f.fp2
	return Fp6[T]{
		C0: k.MulByNonresidue(k.Mul(a.C2, b1)),
		C1: k.Mul(a.C0, b1),
		C2: k.Mul(a.C1, b1),
	}
}

// Mul01 multiplies by the sparse element b0 + b1·v.
func (f *Fp6Field[T]) Mul01(a Fp6[T], b0, b1 Fp2[T]) Fp6[T] {
	k := f.fp2
	t0 := k.Mul(a.C0, b0)
	t1 := k.Mul(a.C1, b1)
	return Fp6[T]{
		C0: k.Add(k.MulByNonresidue(k.Sub(k.Mul(k.Add(a.C1, a.C2), b1), t1)), t0),
		C1: k.Sub(k.Sub(k.Mul(k.Add(b0, b1), k.Add(a.C0, a.C1)), t0), t1),
		C2: k.Add(k.Sub(k.Mul(k.Add(a.C0, a.C2), b0), t0), t1),
	}
}

func (f *Fp6Field[T]) FrobeniusMap(a Fp6[T], power int) Fp6[T] {
	k := f.fp2
	return Fp6[T]{
		C0: k.FrobeniusMap(a.C0, power),
		C1: k.Mul(k.FrobeniusMap(a.C1, power), f.frobC1[power%6]),
		C2: k.Mul(k.FrobeniusMap(a.C2, power), f.frobC2[power%6]),
	}
}

func (f *Fp6Field[T]) Equal(a, b Fp6[T]) bool {
	k := f.fp2
	return k.Equal(a.C0, b.C0) && k.Equal(a.C1, b.C1) && k.Equal(a.C2, b.C2)
}

func (f *Fp6Field[T]) IsZero(a Fp6[T]) bool {
	k := f.fp2
	return k.IsZero(a.C0) && k.IsZero(a.C1) && k.IsZero(a.C2)
}

func (f *Fp6Field[T]) Encode(a Fp6[T]) []byte {
	k := f.fp2
	out := k.Encode(a.C0)
	out = append(out, k.Encode(a.C1)...)
	return append(out, k.Encode(a.C2)...)
}
