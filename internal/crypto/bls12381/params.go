// Package bls12381 instantiates the BLS12-381 pairing-friendly curve: the
// G1 and G2 groups on top of the generic Weierstrass code, their RFC 9380
// hash-to-curve suites, the ZCash point encoding and the optimal ate
// pairing into the Fp12 tower.
//
// The curve is defined by the parameter x = -0xd201000000010000:
//
//	r = x⁴ - x² + 1
//	p = (x - 1)² · r / 3 + x
//
// G1 is E(Fp): y² = x³ + 4 and G2 is the M-type sextic twist
// E'(Fp2): y² = x³ + 4(1 + u).
package bls12381

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/tower"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

// Common errors
var (
	ErrIdentity        = errors.New("bls12381: pairing is not defined for the identity")
	ErrInvalidEncoding = errors.New("bls12381: invalid point encoding")
)

var log = logrus.WithField("pkg", "bls12381")

// Element types of the tower.
type (
	Fp   = fp.Element
	Fp2  = tower.Fp2[fp.Element]
	Fp6  = tower.Fp6[fp.Element]
	Fp12 = tower.Fp12[fp.Element]
)

// Point types of the two groups.
type (
	G1Point = weierstrass.Point[fp.Element]
	G2Point = weierstrass.Point[Fp2]
)

// XAbs is |x|. The parameter itself is negative.
const XAbs uint64 = 0xd201000000010000

var (
	bigX   = new(big.Int).SetUint64(XAbs)
	fpBase = field.BLS12381{}

	// Fields is the tower Fp12 / Fp6 / Fp2 / Fp with ξ = 1 + u.
	Fields = tower.New[fp.Element](fpBase, 1)
	fp2    = Fields.Fp2()
)

func hexInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("bls12381: bad constant " + s)
	}
	return v
}

func fpHex(s string) Fp { return fpBase.FromBig(hexInt(s)) }

func fp2Hex(c0, c1 string) Fp2 { return fp2.FromBigs(hexInt(c0), hexInt(c1)) }

// Order returns r = x⁴ - x² + 1.
func Order() *big.Int {
	x2 := new(big.Int).Mul(bigX, bigX)
	r := new(big.Int).Mul(x2, x2)
	r.Sub(r, x2)
	return r.Add(r, big.NewInt(1))
}

// signedX returns x as a negative integer.
func signedX() *big.Int { return new(big.Int).Neg(bigX) }

// cofactorG1 is (x - 1)² / 3.
func cofactorG1() *big.Int {
	t := new(big.Int).Sub(signedX(), big.NewInt(1))
	t.Mul(t, t)
	return t.Quo(t, big.NewInt(3))
}

// cofactorG2 is (x⁸ - 4x⁷ + 5x⁶ - 4x⁴ + 6x³ - 4x² - 4x + 13) / 9, the
// order of E'(Fp2) divided by r.
func cofactorG2() *big.Int {
	x := signedX()
	// coefficients of x⁸ down to x⁰
	coeffs := []int64{1, -4, 5, 0, -4, 6, -4, -4, 13}
	acc := new(big.Int)
	for _, c := range coeffs {
		acc.Mul(acc, x)
		acc.Add(acc, big.NewInt(c))
	}
	return acc.Quo(acc, big.NewInt(9))
}
