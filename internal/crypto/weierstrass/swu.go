package weierstrass

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/field"
)

// SqrtRatioFunc returns (true, sqrt(u/v)) when u/v is square and
// (false, sqrt(Z·u/v)) otherwise.
type SqrtRatioFunc[T any] func(u, v T) field.Result[T]

// SqrtRatio builds the sqrt_ratio routine of RFC 9380 section F.2.1 for
// the non-square Z. Fields of order 3 mod 4 get the shortcut of F.2.1.2.
func SqrtRatio[T any](f field.Field[T], z T) (SqrtRatioFunc[T], error) {
	q := f.Order()
	one := big.NewInt(1)
	if new(big.Int).Mod(q, big.NewInt(4)).Int64() == 3 {
		c1 := new(big.Int).Rsh(new(big.Int).Sub(q, big.NewInt(3)), 2)
		r := f.Sqrt(f.Neg(z))
		if !r.IsValid {
			return nil, errors.Wrap(ErrInvalidConfig, "-Z is not a square")
		}
		c2 := r.Value
		return func(u, v T) field.Result[T] {
			tv1 := f.Sqr(v)
			tv2 := f.Mul(u, v)
			tv1 = f.Mul(tv1, tv2)
			y1 := f.Pow(tv1, c1)
			y1 = f.Mul(y1, tv2)
			y2 := f.Mul(y1, c2)
			tv3 := f.Mul(f.Sqr(y1), v)
			isQR := f.Equal(tv3, u)
			return field.Result[T]{Value: f.CMov(y2, y1, isQR), IsValid: isQR}
		}, nil
	}

	// c1 is the 2-adic valuation of q-1
	qm1 := new(big.Int).Sub(q, one)
	c1 := 0
	for qm1.Bit(c1) == 0 {
		c1++
	}
	c2 := new(big.Int).Rsh(qm1, uint(c1))
	c3 := new(big.Int).Rsh(new(big.Int).Sub(c2, one), 1)
	c4 := new(big.Int).Sub(new(big.Int).Lsh(one, uint(c1)), one)
	c5 := new(big.Int).Lsh(one, uint(c1-1))
	c6 := f.Pow(z, c2)
	c7 := f.Pow(z, new(big.Int).Rsh(new(big.Int).Add(c2, one), 1))

	return func(u, v T) field.Result[T] {
		tv1 := c6
		tv2 := f.Pow(v, c4)
		tv3 := f.Sqr(tv2)
		tv3 = f.Mul(tv3, v)
		tv5 := f.Mul(u, tv3)
		tv5 = f.Pow(tv5, c3)
		tv5 = f.Mul(tv5, tv2)
		tv2 = f.Mul(tv5, v)
		tv3 = f.Mul(tv5, u)
		tv4 := f.Mul(tv3, tv2)
		tv5 = f.Pow(tv4, c5)
		isQR := f.Equal(tv5, f.One())
		tv2 = f.Mul(tv3, c7)
		tv5 = f.Mul(tv4, tv1)
		tv3 = f.CMov(tv2, tv3, isQR)
		tv4 = f.CMov(tv5, tv4, isQR)
		for i := c1; i >= 2; i-- {
			e := f.Pow(tv4, new(big.Int).Lsh(one, uint(i-2)))
			e1 := f.Equal(e, f.One())
			tv2 = f.Mul(tv3, tv1)
			tv1 = f.Mul(tv1, tv1)
			tv5 = f.Mul(tv4, tv1)
			tv3 = f.CMov(tv2, tv3, e1)
			tv4 = f.CMov(tv5, tv4, e1)
		}
		return field.Result[T]{Value: tv3, IsValid: isQR}
	}, nil
}

// SWUParams are the curve coefficients and non-square Z of the simplified
// SWU map. A and B must both be non-zero, so curves with a = 0 map to an
// isogenous curve first.
type SWUParams[T any] struct {
	A, B, Z T
}

// MapToCurveSimpleSWU returns the simplified Shallue-van de
// Woestijne-Ulas map of RFC 9380 section 6.6.2 as a function from field
// elements to affine points on y² = x³ + Ax + B.
func MapToCurveSimpleSWU[T any](f field.Field[T], p SWUParams[T]) (func(u T) (T, T), error) {
	if f.IsZero(p.A) || f.IsZero(p.B) {
		return nil, errors.Wrap(ErrInvalidConfig, "SWU needs A*B != 0")
	}
	if field.IsSquare(f, p.Z) {
		return nil, errors.Wrap(ErrInvalidConfig, "SWU Z must be a non-square")
	}
	sqrtRatio, err := SqrtRatio(f, p.Z)
	if err != nil {
		return nil, err
	}
	A, B, Z := p.A, p.B, p.Z

	return func(u T) (T, T) {
		tv1 := f.Sqr(u)
		tv1 = f.Mul(tv1, Z)
		tv2 := f.Sqr(tv1)
		tv2 = f.Add(tv2, tv1)
		tv3 := f.Add(tv2, f.One())
		tv3 = f.Mul(tv3, B)
		tv4 := f.CMov(Z, f.Neg(tv2), !f.IsZero(tv2))
		tv4 = f.Mul(tv4, A)
		tv2 = f.Sqr(tv3)
		tv6 := f.Sqr(tv4)
		tv5 := f.Mul(tv6, A)
		tv2 = f.Add(tv2, tv5)
		tv2 = f.Mul(tv2, tv3)
		tv6 = f.Mul(tv6, tv4)
		tv5 = f.Mul(tv6, B)
		tv2 = f.Add(tv2, tv5)
		x := f.Mul(tv1, tv3)
		r := sqrtRatio(tv2, tv6)
		y := f.Mul(tv1, u)
		y = f.Mul(y, r.Value)
		x = f.CMov(x, tv3, r.IsValid)
		y = f.CMov(y, r.Value, r.IsValid)
		e1 := f.IsOdd(u) == f.IsOdd(y)
		y = f.CMov(f.Neg(y), y, e1)
		x = f.Mul(x, f.Inv(tv4))
		return x, y
	}, nil
}
