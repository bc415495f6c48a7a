package bls12381

import (
	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/decompose"
)

// ateLoop is the NAF of |x| without its leading digit.
var ateLoop = decompose.NAF(bigX)

// fp2Half is 1/2 in Fp2.
var fp2Half = fp2.Inv(fp2.FromUint64(2))

// Line holds the coefficients (c0, c1, c2) of one line function. It is
// evaluated at P = (px, py) as the sparse element c0 + c1·px·v + c2·py·v·w.
type Line [3]Fp2

// Precomputes are the lines of the Miller loop for a fixed G2 point, one
// slice per loop iteration.
type Precomputes [][]Line

// pointDouble doubles R in homogeneous projective coordinates and returns
// the tangent line.
func pointDouble(rx, ry, rz Fp2) (Fp2, Fp2, Fp2, Line) {
	f := fp2
	b := G2.B()
	three := f.FromUint64(3)
	t0 := f.Sqr(ry)
	t1 := f.Sqr(rz)
	t2 := f.Mul(f.Mul(t1, three), b)
	t3 := f.Mul(t2, three)
	t4 := f.Sub(f.Sub(f.Sqr(f.Add(ry, rz)), t1), t0)
	l := Line{
		f.Sub(t2, t0),
		f.Mul(f.Sqr(rx), three),
		f.Neg(t4),
	}
	x := f.Mul(f.Mul(f.Mul(f.Sub(t0, t3), rx), ry), fp2Half)
	y := f.Sub(f.Sqr(f.Mul(f.Add(t0, t3), fp2Half)), f.Mul(f.Sqr(t2), three))
	z := f.Mul(t0, t4)
	return x, y, z, l
}

// pointAdd adds the affine point Q to R and returns the chord.
func pointAdd(rx, ry, rz, qx, qy Fp2) (Fp2, Fp2, Fp2, Line) {
	f := fp2
	t0 := f.Sub(ry, f.Mul(qy, rz))
	t1 := f.Sub(rx, f.Mul(qx, rz))
	l := Line{
		f.Sub(f.Mul(t0, qx), f.Mul(t1, qy)),
		f.Neg(t0),
		t1,
	}
	t2 := f.Sqr(t1)
	t3 := f.Mul(t2, t1)
	t4 := f.Mul(t2, rx)
	t5 := f.Add(f.Sub(t3, f.Double(t4)), f.Mul(f.Sqr(t0), rz))
	x := f.Mul(t1, t5)
	y := f.Sub(f.Mul(f.Sub(t4, t5), t0), f.Mul(t3, ry))
	z := f.Mul(rz, t3)
	return x, y, z, l
}

type precomputeKey struct{}

// CalcPrecomputes returns the Miller loop lines for q. The result is
// computed once and cached on the point.
func CalcPrecomputes(q *G2Point) Precomputes {
	return q.Memo(precomputeKey{}, func() any { return calcPrecomputes(q) }).(Precomputes)
}

func calcPrecomputes(q *G2Point) Precomputes {
	qx, qy := q.ToAffine()
	negQy := fp2.Neg(qy)
	rx, ry, rz := qx, qy, fp2.One()
	ell := make(Precomputes, 0, len(ateLoop))
	for _, bit := range ateLoop {
		cur := make([]Line, 0, 2)
		var l Line
		rx, ry, rz, l = pointDouble(rx, ry, rz)
		cur = append(cur, l)
		if bit != 0 {
			y := qy
			if bit < 0 {
				y = negQy
			}
			rx, ry, rz, l = pointAdd(rx, ry, rz, qx, y)
			cur = append(cur, l)
		}
		ell = append(ell, cur)
	}
	log.WithField("steps", len(ell)).Trace("pairing precomputes built")
	return ell
}

// MillerInput pairs the lines of a G2 point with the affine coordinates
// of a G1 point.
type MillerInput struct {
	Lines  Precomputes
	Px, Py Fp
}

// MillerLoopBatch multiplies the Miller loops of every input, sharing one
// squaring per iteration. The result is not exponentiated.
func MillerLoopBatch(in []MillerInput) Fp12 {
	f12 := Fields
	acc := f12.One()
	if len(in) > 0 {
		steps := len(in[0].Lines)
		for i := 0; i < steps; i++ {
			acc = f12.Sqr(acc)
			for _, m := range in {
				for _, l := range m.Lines[i] {
					acc = f12.Mul014(acc, l[0], fp2.MulByBase(l[1], m.Px), fp2.MulByBase(l[2], m.Py))
				}
			}
		}
	}
	// x is negative
	return f12.Conjugate(acc)
}

// FinalExponentiate raises f to 3·(p¹² - 1)/r. The extra factor of 3
// keeps the hard part short and does not affect bilinearity.
func FinalExponentiate(num Fp12) Fp12 {
	k := Fields
	exp := func(a Fp12) Fp12 { return k.Conjugate(k.CyclotomicExp(a, bigX)) }

	// easy part: num^((p⁶ - 1)(p² + 1))
	t0 := k.Div(k.FrobeniusMap(num, 6), num)
	t1 := k.Mul(k.FrobeniusMap(t0, 2), t0)

	t2 := exp(t1)
	t3 := k.Mul(k.Conjugate(k.CyclotomicSquare(t1)), t2)
	t4 := exp(t3)
	t5 := exp(t4)
	t6 := k.Mul(exp(t5), k.CyclotomicSquare(t2))
	t7 := exp(t6)

	a := k.FrobeniusMap(k.Mul(t2, t5), 2)
	b := k.FrobeniusMap(k.Mul(t4, t1), 3)
	c := k.FrobeniusMap(k.Mul(t6, k.Conjugate(t1)), 1)
	d := k.Mul(k.Mul(t7, k.Conjugate(t3)), t1)
	return k.Mul(k.Mul(k.Mul(a, b), c), d)
}

// Pair is one (G1, G2) input of PairingBatch.
type Pair struct {
	G1 *G1Point
	G2 *G2Point
}

// PairingBatch computes the product of e(P_i, Q_i). Identity inputs are
// rejected and every point is checked for subgroup membership.
func PairingBatch(pairs []Pair, withFinalExp bool) (Fp12, error) {
	g1s := make([]*G1Point, len(pairs))
	g2s := make([]*G2Point, len(pairs))
	for i, p := range pairs {
		if p.G1 == nil || p.G2 == nil {
			return Fp12{}, errors.Wrapf(ErrIdentity, "pair %d: missing point", i)
		}
		g1s[i], g2s[i] = p.G1, p.G2
	}
	g1s = G1.NormalizeZ(g1s)
	g2s = G2.NormalizeZ(g2s)

	in := make([]MillerInput, len(pairs))
	for i := range pairs {
		p, q := g1s[i], g2s[i]
		if p.IsZero() || q.IsZero() {
			return Fp12{}, errors.Wrapf(ErrIdentity, "pair %d", i)
		}
		if err := p.AssertValidity(); err != nil {
			return Fp12{}, errors.Wrapf(err, "pair %d: G1", i)
		}
		if err := q.AssertValidity(); err != nil {
			return Fp12{}, errors.Wrapf(err, "pair %d: G2", i)
		}
		px, py := p.ToAffine()
		// lines are cached on the caller's point, not the normalized copy
		in[i] = MillerInput{Lines: CalcPrecomputes(pairs[i].G2), Px: px, Py: py}
	}
	f := MillerLoopBatch(in)
	if withFinalExp {
		f = FinalExponentiate(f)
	}
	return f, nil
}

// Pairing computes e(p, q).
func Pairing(p *G1Point, q *G2Point, withFinalExp bool) (Fp12, error) {
	return PairingBatch([]Pair{{G1: p, G2: q}}, withFinalExp)
}
