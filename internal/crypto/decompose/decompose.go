// Package decompose rewrites scalars into forms that make point
// multiplication cheaper: the GLV split for curves with an efficient
// endomorphism and the signed-digit NAF for fixed loop parameters.
package decompose

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrSplitOutOfRange means the lattice basis produced half-scalars that
// are too large. It indicates corrupted curve parameters.
var ErrSplitOutOfRange = errors.New("decompose: endomorphism split out of range")

// Basis is the short lattice basis {(a1, b1), (a2, b2)} of
// {(x, y) : x + y·λ = 0 mod n}.
type Basis [2][2]*big.Int

// Split is k = ±K1 ± K2·λ (mod n) with non-negative K1 and K2.
type Split struct {
	K1    *big.Int
	K1Neg bool
	K2    *big.Int
	K2Neg bool
}

// divNearest rounds num/den to the nearest integer, halves away from zero.
func divNearest(num, den *big.Int) *big.Int {
	half := new(big.Int).Rsh(den, 1)
	if num.Sign() < 0 {
		half.Neg(half)
	}
	q := new(big.Int).Add(num, half)
	return q.Quo(q, den)
}

// SplitScalar decomposes k using the GLV method (Hankerson, Menezes,
// Vanstone, Algorithm 3.74):
//
//	c1 = round(b2·k / n)
//	c2 = round(-b1·k / n)
//	k1 = k - c1·a1 - c2·a2
//	k2 = -c1·b1 - c2·b2
//
// Signs are carried as flags so both halves stay around sqrt(n).
func SplitScalar(k *big.Int, basis Basis, n *big.Int) (Split, error) {
	a1, b1 := basis[0][0], basis[0][1]
	a2, b2 := basis[1][0], basis[1][1]

	c1 := divNearest(new(big.Int).Mul(b2, k), n)
	c2 := divNearest(new(big.Int).Neg(new(big.Int).Mul(b1, k)), n)

	k1 := new(big.Int).Sub(k, new(big.Int).Mul(c1, a1))
	k1.Sub(k1, new(big.Int).Mul(c2, a2))
	k2 := new(big.Int).Neg(new(big.Int).Mul(c1, b1))
	k2.Sub(k2, new(big.Int).Mul(c2, b2))

	s := Split{K1: k1, K2: k2}
	if k1.Sign() < 0 {
		s.K1Neg = true
		k1.Neg(k1)
	}
	if k2.Sign() < 0 {
		s.K2Neg = true
		k2.Neg(k2)
	}

	// |k1|, |k2| < 2^(ceil(bits(n)/2)+1)
	bound := new(big.Int).Lsh(big.NewInt(1), uint((n.BitLen()+1)/2+1))
	if k1.Cmp(bound) >= 0 || k2.Cmp(bound) >= 0 {
		return Split{}, errors.Wrapf(ErrSplitOutOfRange, "k=%x", k)
	}
	return s, nil
}

// NAF returns the non-adjacent form of a > 1 most significant digit
// first, without the leading 1. Each digit is -1, 0 or 1 and no two
// consecutive digits are non-zero.
func NAF(a *big.Int) []int8 {
	x := new(big.Int).Set(a)
	var res []int8
	three := big.NewInt(3)
	for x.Cmp(big.NewInt(1)) > 0 {
		switch {
		case x.Bit(0) == 0:
			res = append(res, 0)
		case new(big.Int).And(x, three).Cmp(three) == 0:
			res = append(res, -1)
			x.Add(x, big.NewInt(1))
		default:
			res = append(res, 1)
		}
		x.Rsh(x, 1)
	}
	// digits were produced least significant first
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}

// FromNAF rebuilds the integer encoded by NAF(a).
func FromNAF(digits []int8) *big.Int {
	v := big.NewInt(1)
	for _, d := range digits {
		v.Lsh(v, 1)
		v.Add(v, big.NewInt(int64(d)))
	}
	return v
}
