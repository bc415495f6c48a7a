package field

import (
	"math/big"
)

var one = big.NewInt(1)

// Pow computes a^e with left-to-right square-and-multiply. Negative
// exponents are rejected because no caller needs them.
func Pow[T any](f Field[T], a T, e *big.Int) T {
	if e.Sign() < 0 {
		panic("field: negative exponent")
	}
	res := f.One()
	for i := e.BitLen() - 1; i >= 0; i-- {
		res = f.Sqr(res)
		if e.Bit(i) == 1 {
			res = f.Mul(res, a)
		}
	}
	return res
}

// InvertBatch inverts every element of xs with a single field inversion
// (Montgomery's trick). A zero element means the caller's parameters are
// corrupted and causes a panic.
func InvertBatch[T any](f Field[T], xs []T) []T {
	for _, x := range xs {
		if f.IsZero(x) {
			panic(ErrZeroInverse)
		}
	}
	return invertBatch(f, xs)
}

// InvertBatchPassZero is InvertBatch with zeros mapped to zero.
func InvertBatchPassZero[T any](f Field[T], xs []T) []T {
	return invertBatch(f, xs)
}

func invertBatch[T any](f Field[T], xs []T) []T {
	out := make([]T, len(xs))
	// prefix products of the non-zero inputs
	acc := f.One()
	for i, x := range xs {
		if f.IsZero(x) {
			out[i] = f.Zero()
			continue
		}
		out[i] = acc
		acc = f.Mul(acc, x)
	}
	inv := f.Inv(acc)
	for i := len(xs) - 1; i >= 0; i-- {
		if f.IsZero(xs[i]) {
			continue
		}
		out[i] = f.Mul(out[i], inv)
		inv = f.Mul(inv, xs[i])
	}
	return out
}

// Legendre returns 1 for non-zero squares, -1 for non-squares and 0 for
// zero. It is only meaningful for prime fields.
func Legendre[T any](f Field[T], a T) int {
	e := new(big.Int).Sub(f.Order(), one)
	e.Rsh(e, 1)
	l := f.Pow(a, e)
	switch {
	case f.IsZero(l):
		return 0
	case f.Equal(l, f.One()):
		return 1
	default:
		return -1
	}
}

// IsSquare reports whether a has a square root in a prime field.
func IsSquare[T any](f Field[T], a T) bool {
	return Legendre(f, a) >= 0
}

// SqrtFunc returns a square root routine for the prime field f chosen by
// the shape of its order: the closed form x^((p+1)/4) when p = 3 mod 4,
// Atkin's formula when p = 5 mod 8 and Tonelli-Shanks otherwise.
func SqrtFunc[T any](f Field[T]) func(T) Result[T] {
	p := f.Order()
	check := func(a, r T) Result[T] {
		if !f.Equal(f.Sqr(r), a) {
			return Result[T]{Value: f.Zero()}
		}
		return Result[T]{Value: r, IsValid: true}
	}

	mod8 := new(big.Int).Mod(p, big.NewInt(8)).Int64()
	switch {
	case mod8%4 == 3:
		e := new(big.Int).Add(p, one)
		e.Rsh(e, 2)
		return func(a T) Result[T] {
			return check(a, f.Pow(a, e))
		}
	case mod8 == 5:
		c1 := new(big.Int).Sub(p, big.NewInt(5))
		c1.Rsh(c1, 3)
		return func(a T) Result[T] {
			n2 := f.Add(a, a)
			v := f.Pow(n2, c1)
			nv := f.Mul(n2, v)
			i := f.Sub(f.Mul(nv, v), f.One())
			return check(a, f.Mul(f.Mul(a, v), i))
		}
	}
	return tonelliShanks(f)
}

func tonelliShanks[T any](f Field[T]) func(T) Result[T] {
	p := f.Order()
	// p - 1 = q * 2^s with q odd
	q := new(big.Int).Sub(p, one)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}
	// any non-residue works as the generator of the 2-Sylow subgroup
	z := f.FromUint64(2)
	for Legendre(f, z) != -1 {
		z = f.Add(z, f.One())
	}
	c := f.Pow(z, q)
	q1 := new(big.Int).Add(q, one)
	q1.Rsh(q1, 1)

	return func(a T) Result[T] {
		if f.IsZero(a) {
			return Result[T]{Value: f.Zero(), IsValid: true}
		}
		if Legendre(f, a) != 1 {
			return Result[T]{Value: f.Zero()}
		}
		m := s
		cc := c
		t := f.Pow(a, q)
		r := f.Pow(a, q1)
		for !f.Equal(t, f.One()) {
			// least i with t^(2^i) = 1
			i := 0
			t2 := t
			for !f.Equal(t2, f.One()) {
				t2 = f.Sqr(t2)
				i++
			}
			b := cc
			for j := 0; j < m-i-1; j++ {
				b = f.Sqr(b)
			}
			m = i
			cc = f.Sqr(b)
			t = f.Mul(t, cc)
			r = f.Mul(r, b)
		}
		return Result[T]{Value: r, IsValid: true}
	}
}
