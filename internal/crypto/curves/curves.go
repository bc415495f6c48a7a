// Package curves instantiates the concrete curves on top of the generic
// Weierstrass and Edwards groups and exposes them behind a uniform,
// byte-oriented Group interface.
package curves

import (
	"crypto/elliptic"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/smallyu/go-curves/internal/crypto/decompose"
	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

func hexInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curves: bad constant " + s)
	}
	return v
}

// Secp256k1 is y² = x³ + 7 over the decred field implementation, with
// the GLV endomorphism (x, y) -> (β·x, y) = λ·(x, y).
var Secp256k1 = newSecp256k1()

// Secp256k1Lambda is the scalar λ matching β on the subgroup.
var Secp256k1Lambda = hexInt("5363ad4cc05c30e0a5261c028812645a122e22ea20816678df02967c1b23bd72")

func newSecp256k1() *weierstrass.Curve[secp256k1.FieldVal] {
	params := secp256k1.S256().Params()
	f := field.Secp256k1{}
	return weierstrass.MustCurve(weierstrass.Config[secp256k1.FieldVal]{
		Name:  "secp256k1",
		Field: f,
		A:     f.Zero(),
		B:     f.FromUint64(7),
		N:     params.N,
		H:     big.NewInt(1),
		Gx:    f.FromBig(params.Gx),
		Gy:    f.FromBig(params.Gy),
		Endo: &weierstrass.Endomorphism[secp256k1.FieldVal]{
			Beta: f.FromBig(hexInt("7ae96a2b657c07106e64479eac3434e99cf0497512f58995c1396c28719501ee")),
			Basis: decompose.Basis{
				{hexInt("3086d221a7d46bcde86c90e49284eb15"), new(big.Int).Neg(hexInt("e4437ed6010e88286f547fa90abfe4c3"))},
				{hexInt("114ca50f7a8e2f3f657c1108d9d44cfd8"), hexInt("3086d221a7d46bcde86c90e49284eb15")},
			},
		},
	})
}

// P256 is NIST P-256 (secp256r1) over a math/big field.
var P256 = newP256()

// P256Field is the base field of P-256.
var P256Field = field.NewPrime(elliptic.P256().Params().P)

func newP256() *weierstrass.Curve[*big.Int] {
	params := elliptic.P256().Params()
	f := P256Field
	return weierstrass.MustCurve(weierstrass.Config[*big.Int]{
		Name:  "P-256",
		Field: f,
		A:     f.Neg(f.FromUint64(3)),
		B:     f.FromBig(params.B),
		N:     params.N,
		H:     big.NewInt(1),
		Gx:    f.FromBig(params.Gx),
		Gy:    f.FromBig(params.Gy),
	})
}
