package bls12381

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"

	"github.com/smallyu/go-curves/internal/crypto/decompose"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

// g1Beta is a primitive cube root of unity in Fp. (x, y) -> (β·x, y)
// acts as multiplication by -x² on G1.
var g1Beta = fpHex("5f19672fdf76ce51ba69c6076a0f77eaddb3a93be6f89688de17d813620a00022e01fffffffefffe")

// G1 is the prime-order subgroup of y² = x³ + 4 over Fp.
var G1 = newG1()

func newG1() *weierstrass.Curve[fp.Element] {
	f := fpBase
	x2 := new(big.Int).Mul(bigX, bigX)
	return weierstrass.MustCurve(weierstrass.Config[fp.Element]{
		Name:          "BLS12-381 G1",
		Field:         f,
		A:             f.Zero(),
		B:             f.FromUint64(4),
		N:             Order(),
		H:             cofactorG1(),
		Gx:            fpHex("17f1d3a73197d7942695638c4fa9ac0fc3688c4f9774b905a14e3a3f171bac586c55e83ff97a1aeffb3af00adb22c6bb"),
		Gy:            fpHex("08b3f481e3aaa0f1a09e30ed741d8ae4fcf5e095d5d00af600db18cb2c04b3edd03cc744a2888ae40caa232946c5e7e1"),
		AllowInfinity: true,
		// λ = -x²; (x², 1) and (-1, x² - 1) span the kernel lattice
		Endo: &weierstrass.Endomorphism[fp.Element]{
			Beta: g1Beta,
			Basis: decompose.Basis{
				{x2, big.NewInt(1)},
				{big.NewInt(-1), new(big.Int).Sub(x2, big.NewInt(1))},
			},
		},
		IsTorsionFree: g1IsTorsionFree,
		ClearCofactor: g1ClearCofactor,
		BaseWindow:    4,
	})
}

// g1IsTorsionFree checks φ(P) = [-x²]P (Scott, eprint 2021/1130).
func g1IsTorsionFree(c *weierstrass.Curve[fp.Element], p *G1Point) bool {
	x, y, z := p.Projective()
	phi := c.NewPointUnchecked(fpBase.Mul(x, g1Beta), y, z)
	u2P := p.MultiplyBy(bigX).Negate().MultiplyBy(bigX)
	return u2P.Equal(phi)
}

// g1ClearCofactor multiplies by h_eff = 1 - x.
func g1ClearCofactor(_ *weierstrass.Curve[fp.Element], p *G1Point) *G1Point {
	return p.MultiplyBy(bigX).Add(p)
}
