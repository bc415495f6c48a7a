package bls12381

import (
	"math/big"

	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

// G2 is the prime-order subgroup of y² = x³ + 4(1 + u) over Fp2.
var G2 = newG2()

// psiX and psiY are w²/Frob(w²) and w³/Frob(w³), the constants of the
// untwist-Frobenius-twist endomorphism ψ.
var psiX, psiY = psiConstants()

func newG2() *weierstrass.Curve[Fp2] {
	f := fp2
	return weierstrass.MustCurve(weierstrass.Config[Fp2]{
		Name:  "BLS12-381 G2",
		Field: f,
		A:     f.Zero(),
		B:     fp2.FromBigs(big.NewInt(4), big.NewInt(4)),
		N:     Order(),
		H:     cofactorG2(),
		Gx: fp2Hex(
			"024aa2b2f08f0a91260805272dc51051c6e47ad4fa403b02b4510b647ae3d1770bac0326a805bbefd48056c8c121bdb8",
			"13e02b6052719f607dacd3a088274f65596bd0d09920b61ab5da61bbdc7f5049334cf11213945d57e5ac7d055d042b7e",
		),
		Gy: fp2Hex(
			"0ce5d527727d6e118cc9cdc6da2e351aadfd9baa8cbdd3a76d429a695160d12c923ac9cc3baca289e193548608b82801",
			"0606c4a02ea734cc32acd2b02bc28b99cb3e287e85a763af267492ab572e99ab3f370d275cec1da1aaa9075ff05f79be",
		),
		AllowInfinity: true,
		IsTorsionFree: g2IsTorsionFree,
		ClearCofactor: g2ClearCofactor,
		BaseWindow:    4,
	})
}

// ratioInFp2 returns t / Frob(t), which must lie in Fp2.
func ratioInFp2(t Fp12) Fp2 {
	r := Fields.Div(t, Fields.FrobeniusMap(t, 1))
	f6 := Fields.Fp6()
	if !f6.IsZero(r.C1) || !fp2.IsZero(r.C0.C1) || !fp2.IsZero(r.C0.C2) {
		panic("bls12381: psi constant is not in Fp2")
	}
	return r.C0.C0
}

func psiConstants() (Fp2, Fp2) {
	one, zero := fp2.One(), fp2.Zero()
	// w² = v and w³ = v·w
	wsq := Fp12{C0: Fp6{C0: zero, C1: one, C2: zero}, C1: Fields.Fp6().Zero()}
	wcu := Fp12{C0: Fields.Fp6().Zero(), C1: Fp6{C0: zero, C1: one, C2: zero}}
	return ratioInFp2(wsq), ratioInFp2(wcu)
}

// Psi is the endomorphism ψ = twist⁻¹ ∘ Frobenius ∘ twist. On G2 it acts
// as multiplication by p, which is x modulo r.
func Psi(p *G2Point) *G2Point {
	x, y, z := p.Projective()
	return p.Curve().NewPointUnchecked(
		fp2.Mul(psiX, fp2.Conjugate(x)),
		fp2.Mul(psiY, fp2.Conjugate(y)),
		fp2.Conjugate(z),
	)
}

// Psi2 is ψ∘ψ.
func Psi2(p *G2Point) *G2Point { return Psi(Psi(p)) }

// g2IsTorsionFree checks ψ(P) = [x]P (Scott, eprint 2021/1130).
func g2IsTorsionFree(_ *weierstrass.Curve[Fp2], p *G2Point) bool {
	return p.MultiplyBy(bigX).Negate().Equal(Psi(p))
}

// g2ClearCofactor computes [x² - x - 1]P + [x - 1]ψ(P) + ψ²(2P)
// (Budroni-Pintore, eprint 2017/419).
func g2ClearCofactor(_ *weierstrass.Curve[Fp2], p *G2Point) *G2Point {
	// [1 - x]P
	t := p.MultiplyBy(bigX).Add(p)
	psiT := Psi(t)
	// [x² - x]P
	t = t.MultiplyBy(bigX)
	q := p.Add(psiT).Negate()
	q = q.Add(t)
	return q.Add(Psi2(p.Double()))
}
