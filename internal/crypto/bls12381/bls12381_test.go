package bls12381_test

import (
	"crypto/rand"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gnark "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-curves/internal/crypto/bls12381"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

var xAbs = new(big.Int).SetUint64(bls12381.XAbs)

func randScalar(t *testing.T) *big.Int {
	t.Helper()
	for {
		k, err := rand.Int(rand.Reader, bls12381.Order())
		require.NoError(t, err)
		if k.Sign() != 0 {
			return k
		}
	}
}

func hexBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		t.Fatalf("bad hex %q", s)
	}
	return v
}

func g1Bytes(t *testing.T, p *bls12381.G1Point) []byte {
	t.Helper()
	b, err := bls12381.G1ToBytes(p, true)
	require.NoError(t, err)
	return b
}

func g2Bytes(t *testing.T, p *bls12381.G2Point) []byte {
	t.Helper()
	b, err := bls12381.G2ToBytes(p, true)
	require.NoError(t, err)
	return b
}

func fromGnarkGT(g gnark.GT) bls12381.Fp12 {
	e2 := func(a0, a1 bls12381.Fp) bls12381.Fp2 { return bls12381.Fp2{C0: a0, C1: a1} }
	return bls12381.Fp12{
		C0: bls12381.Fp6{
			C0: e2(g.C0.B0.A0, g.C0.B0.A1),
			C1: e2(g.C0.B1.A0, g.C0.B1.A1),
			C2: e2(g.C0.B2.A0, g.C0.B2.A1),
		},
		C1: bls12381.Fp6{
			C0: e2(g.C1.B0.A0, g.C1.B0.A1),
			C1: e2(g.C1.B1.A0, g.C1.B1.A1),
			C2: e2(g.C1.B2.A0, g.C1.B2.A1),
		},
	}
}

func TestParameters(t *testing.T) {
	r := bls12381.Order()
	assert.Zero(t, r.Cmp(fr.Modulus()))

	// p = (x - 1)² · r / 3 + x
	x := new(big.Int).Neg(xAbs)
	p := new(big.Int).Sub(x, big.NewInt(1))
	p.Mul(p, p).Mul(p, r).Quo(p, big.NewInt(3)).Add(p, x)
	assert.Zero(t, p.Cmp(bls12381.G1.Field().Order()))

	assert.Equal(t, "396c8c005555e1568c00aaab0000aaab", bls12381.G1.Cofactor().Text(16))
	assert.Equal(t,
		"5d543a95414e7f1091d50792876a202cd91de4547085abaa68a205b2e5a7ddfa628f1cb4d9e82ef21537e293a6691ae1616ec6e786f0c70cf1c38e31c7238e5",
		bls12381.G2.Cofactor().Text(16))

	_, _, g1, g2 := gnark.Generators()
	b1 := g1.Bytes()
	b2 := g2.Bytes()
	assert.Equal(t, b1[:], g1Bytes(t, bls12381.G1.Generator()))
	assert.Equal(t, b2[:], g2Bytes(t, bls12381.G2.Generator()))
}

func TestG1MatchesGnark(t *testing.T) {
	_, _, gen, _ := gnark.Generators()
	g := bls12381.G1.Generator()
	for i := 0; i < 8; i++ {
		k := randScalar(t)
		got, err := g.Multiply(k)
		require.NoError(t, err)
		var want gnark.G1Affine
		want.ScalarMultiplication(&gen, k)
		wb := want.Bytes()
		assert.Equal(t, wb[:], g1Bytes(t, got))

		// a point without a table takes the endomorphism path
		k2 := randScalar(t)
		a, err := got.Multiply(k2)
		require.NoError(t, err)
		b, err := got.MultiplyUnsafe(k2)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
		want.ScalarMultiplication(&want, k2)
		wb = want.Bytes()
		assert.Equal(t, wb[:], g1Bytes(t, a))
	}
}

func TestG2MatchesGnark(t *testing.T) {
	_, _, _, gen := gnark.Generators()
	g := bls12381.G2.Generator()
	for i := 0; i < 4; i++ {
		k := randScalar(t)
		got, err := g.Multiply(k)
		require.NoError(t, err)
		var want gnark.G2Affine
		want.ScalarMultiplication(&gen, k)
		wb := want.Bytes()
		assert.Equal(t, wb[:], g2Bytes(t, got))

		u, err := got.MultiplyUnsafe(k)
		require.NoError(t, err)
		want.ScalarMultiplication(&want, k)
		wb = want.Bytes()
		assert.Equal(t, wb[:], g2Bytes(t, u))
	}
}

// offSubgroupG1 returns a point of E(Fp) outside G1.
func offSubgroupG1(t *testing.T) (*bls12381.G1Point, gnark.G1Affine) {
	t.Helper()
	c := bls12381.G1
	f := c.Field()
	for i := uint64(1); i < 100; i++ {
		x := f.FromUint64(i)
		root := f.Sqrt(f.Add(f.Mul(f.Sqr(x), x), c.B()))
		if !root.IsValid {
			continue
		}
		p := c.NewPointUnchecked(x, root.Value, f.One())
		if p.IsTorsionFree() {
			continue
		}
		return p, gnark.G1Affine{X: x, Y: root.Value}
	}
	t.Fatal("no point found")
	return nil, gnark.G1Affine{}
}

func TestG1SubgroupAndCofactor(t *testing.T) {
	p, ref := offSubgroupG1(t)
	assert.False(t, ref.IsInSubGroup())
	assert.True(t, errors.Is(p.AssertValidity(), weierstrass.ErrNotInSubgroup))

	cleared := p.ClearCofactor()
	require.NoError(t, cleared.AssertValidity())
	ref.ClearCofactor(&ref)
	rb := ref.Bytes()
	assert.Equal(t, rb[:], g1Bytes(t, cleared))

	// the compressed form of p decodes to a subgroup error
	enc := append([]byte{}, bls12381.G1.Field().Encode(mustAffineX(p))...)
	enc[0] |= 0x80
	_, err := bls12381.G1FromBytes(enc)
	if err == nil {
		t.Fatalf("decoded a point outside the subgroup")
	}
}

func mustAffineX(p *bls12381.G1Point) bls12381.Fp {
	x, _ := p.ToAffine()
	return x
}

func TestG2PsiAndCofactor(t *testing.T) {
	g := bls12381.G2.Generator()
	// ψ acts as [x] on G2
	assert.True(t, bls12381.Psi(g).Equal(g.MultiplyBy(xAbs).Negate()))
	assert.True(t, bls12381.Psi2(g).Equal(g.MultiplyBy(xAbs).MultiplyBy(xAbs)))

	c := bls12381.G2
	f := c.Field()
	var p *bls12381.G2Point
	for i := uint64(1); i < 100 && p == nil; i++ {
		x := f.FromUint64(i)
		root := f.Sqrt(f.Add(f.Mul(f.Sqr(x), x), c.B()))
		if root.IsValid {
			p = c.NewPointUnchecked(x, root.Value, f.One())
		}
	}
	require.NotNil(t, p)
	assert.False(t, p.IsTorsionFree())
	assert.True(t, errors.Is(p.AssertValidity(), weierstrass.ErrNotInSubgroup))

	cleared := p.ClearCofactor()
	require.NoError(t, cleared.AssertValidity())
	// the generic multiplication by the cofactor lands in G2 too
	assert.True(t, p.MultiplyBy(c.Cofactor()).IsTorsionFree())

	enc := g2Bytes(t, cleared)
	var ref gnark.G2Affine
	_, err := ref.SetBytes(enc)
	require.NoError(t, err)
	assert.True(t, ref.IsInSubGroup())
}

func TestEncoding(t *testing.T) {
	p, err := bls12381.G1.Generator().Multiply(randScalar(t))
	require.NoError(t, err)
	for _, compressed := range []bool{true, false} {
		b, err := bls12381.G1ToBytes(p, compressed)
		require.NoError(t, err)
		if compressed {
			assert.Len(t, b, bls12381.G1CompressedSize)
		} else {
			assert.Len(t, b, bls12381.G1UncompressedSize)
		}
		q, err := bls12381.G1FromBytes(b)
		require.NoError(t, err)
		assert.True(t, q.Equal(p))
	}

	q, err := bls12381.G2.Generator().Multiply(randScalar(t))
	require.NoError(t, err)
	for _, compressed := range []bool{true, false} {
		b, err := bls12381.G2ToBytes(q, compressed)
		require.NoError(t, err)
		r, err := bls12381.G2FromBytes(b)
		require.NoError(t, err)
		assert.True(t, r.Equal(q))

		var ref gnark.G2Affine
		_, err = ref.SetBytes(b)
		require.NoError(t, err)
		rb := ref.Bytes()
		cb := g2Bytes(t, q)
		assert.Equal(t, rb[:], cb)
	}

	// infinity
	inf, err := bls12381.G1ToBytes(bls12381.G1.Zero(), true)
	require.NoError(t, err)
	assert.Equal(t, byte(0xc0), inf[0])
	z, err := bls12381.G1FromBytes(inf)
	require.NoError(t, err)
	assert.True(t, z.IsZero())
	infU, err := bls12381.G2ToBytes(bls12381.G2.Zero(), false)
	require.NoError(t, err)
	assert.Equal(t, byte(0x40), infU[0])
	assert.Len(t, infU, bls12381.G2UncompressedSize)

	good := g1Bytes(t, p)
	bad := map[string][]byte{
		"short":            good[:47],
		"no compress flag": append([]byte{good[0] &^ 0x80}, good[1:]...),
		"dirty infinity":   append([]byte{0xc0}, append(make([]byte, 46), 1)...),
		"infinity sort":    append([]byte{0xe0}, make([]byte, 47)...),
	}
	unc, err := bls12381.G1ToBytes(p, false)
	require.NoError(t, err)
	bad["sorted uncompressed"] = append([]byte{unc[0] | 0x20}, unc[1:]...)
	// x = p is not canonical
	nonCanonical := bls12381.G1.Field().Order().FillBytes(make([]byte, 48))
	nonCanonical[0] |= 0x80
	bad["non-canonical"] = nonCanonical
	for name, b := range bad {
		_, err := bls12381.G1FromBytes(b)
		assert.Error(t, err, name)
	}
}

type h2cVectors struct {
	DST     string `json:"dst"`
	Vectors []struct {
		P struct {
			X string `json:"x"`
			Y string `json:"y"`
		} `json:"P"`
		Msg string `json:"msg"`
	} `json:"vectors"`
}

func loadVectors(t *testing.T, name string) h2cVectors {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var v h2cVectors
	require.NoError(t, json.Unmarshal(b, &v))
	require.NotEmpty(t, v.Vectors)
	return v
}

func TestHashToG1Vectors(t *testing.T) {
	h := bls12381.G1Hasher
	for file, fn := range map[string]func(msg, dst []byte) (*bls12381.G1Point, error){
		"BLS12381G1_XMD-SHA-256_SSWU_RO_.json": h.HashToCurve,
		"BLS12381G1_XMD-SHA-256_SSWU_NU_.json": h.EncodeToCurve,
	} {
		v := loadVectors(t, file)
		for _, vec := range v.Vectors {
			p, err := fn([]byte(vec.Msg), []byte(v.DST))
			require.NoError(t, err)
			x, y := p.ToAffine()
			f := bls12381.G1.Field()
			assert.Zero(t, hexBig(t, vec.P.X).Cmp(new(big.Int).SetBytes(f.Encode(x))), "%s %q", file, vec.Msg)
			assert.Zero(t, hexBig(t, vec.P.Y).Cmp(new(big.Int).SetBytes(f.Encode(y))), "%s %q", file, vec.Msg)
		}
	}
}

func TestHashToG2Vectors(t *testing.T) {
	h := bls12381.G2Hasher
	fp2Equal := func(t *testing.T, want string, got bls12381.Fp2) {
		parts := strings.Split(want, ",")
		require.Len(t, parts, 2)
		c0, c1 := got.C0.Bytes(), got.C1.Bytes()
		assert.Zero(t, hexBig(t, parts[0]).Cmp(new(big.Int).SetBytes(c0[:])))
		assert.Zero(t, hexBig(t, parts[1]).Cmp(new(big.Int).SetBytes(c1[:])))
	}
	for file, fn := range map[string]func(msg, dst []byte) (*bls12381.G2Point, error){
		"BLS12381G2_XMD-SHA-256_SSWU_RO_.json": h.HashToCurve,
		"BLS12381G2_XMD-SHA-256_SSWU_NU_.json": h.EncodeToCurve,
	} {
		v := loadVectors(t, file)
		for _, vec := range v.Vectors {
			p, err := fn([]byte(vec.Msg), []byte(v.DST))
			require.NoError(t, err)
			x, y := p.ToAffine()
			fp2Equal(t, vec.P.X, x)
			fp2Equal(t, vec.P.Y, y)
		}
	}
}

func TestHashMatchesGnark(t *testing.T) {
	dst := []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")
	for _, msg := range []string{"", "abc", "a longer message to hash"} {
		want2, err := gnark.HashToG2([]byte(msg), dst)
		require.NoError(t, err)
		got2, err := bls12381.G2Hasher.HashToCurve([]byte(msg), dst)
		require.NoError(t, err)
		wb2 := want2.Bytes()
		assert.Equal(t, wb2[:], g2Bytes(t, got2))

		want1, err := gnark.HashToG1([]byte(msg), dst)
		require.NoError(t, err)
		got1, err := bls12381.G1Hasher.HashToCurve([]byte(msg), dst)
		require.NoError(t, err)
		wb1 := want1.Bytes()
		assert.Equal(t, wb1[:], g1Bytes(t, got1))

		enc1, err := gnark.EncodeToG1([]byte(msg), dst)
		require.NoError(t, err)
		got1, err = bls12381.G1Hasher.EncodeToCurve([]byte(msg), dst)
		require.NoError(t, err)
		eb1 := enc1.Bytes()
		assert.Equal(t, eb1[:], g1Bytes(t, got1))
	}
}

func TestPairingMatchesGnark(t *testing.T) {
	for i := 0; i < 2; i++ {
		p, err := bls12381.G1.Generator().Multiply(randScalar(t))
		require.NoError(t, err)
		q, err := bls12381.G2.Generator().Multiply(randScalar(t))
		require.NoError(t, err)

		var gp gnark.G1Affine
		_, err = gp.SetBytes(g1Bytes(t, p))
		require.NoError(t, err)
		var gq gnark.G2Affine
		_, err = gq.SetBytes(g2Bytes(t, q))
		require.NoError(t, err)

		want, err := gnark.Pair([]gnark.G1Affine{gp}, []gnark.G2Affine{gq})
		require.NoError(t, err)
		got, err := bls12381.Pairing(p, q, true)
		require.NoError(t, err)
		assert.True(t, bls12381.Fields.Equal(fromGnarkGT(want), got))

		// the final exponentiation alone agrees on any Miller loop output
		m, err := bls12381.Pairing(p, q, false)
		require.NoError(t, err)
		ml, err := gnark.MillerLoop([]gnark.G1Affine{gp}, []gnark.G2Affine{gq})
		require.NoError(t, err)
		fe := gnark.FinalExponentiation(&ml)
		assert.True(t, bls12381.Fields.Equal(fromGnarkGT(fe), bls12381.FinalExponentiate(m)))
	}
}

func TestPairingBilinearity(t *testing.T) {
	k := bls12381.Fields
	g1, g2 := bls12381.G1.Generator(), bls12381.G2.Generator()
	base, err := bls12381.Pairing(g1, g2, true)
	require.NoError(t, err)
	assert.False(t, k.IsOne(base))

	a, b := randScalar(t), randScalar(t)
	aP, err := g1.Multiply(a)
	require.NoError(t, err)
	bQ, err := g2.Multiply(b)
	require.NoError(t, err)
	lhs, err := bls12381.Pairing(aP, bQ, true)
	require.NoError(t, err)
	ab := new(big.Int).Mul(a, b)
	ab.Mod(ab, bls12381.Order())
	assert.True(t, k.Equal(lhs, k.Pow(base, ab)))

	// e(P, Q) · e(-P, Q) = 1 through the shared loop
	prod, err := bls12381.PairingBatch([]bls12381.Pair{
		{G1: aP, G2: bQ},
		{G1: aP.Negate(), G2: bQ},
	}, true)
	require.NoError(t, err)
	assert.True(t, k.IsOne(prod))

	// e(aP, Q) = e(P, aQ)
	aQ, err := g2.Multiply(a)
	require.NoError(t, err)
	x, err := bls12381.Pairing(aP, g2, true)
	require.NoError(t, err)
	y, err := bls12381.Pairing(g1, aQ, true)
	require.NoError(t, err)
	assert.True(t, k.Equal(x, y))
}

func TestPairingRejectsBadInput(t *testing.T) {
	g1, g2 := bls12381.G1.Generator(), bls12381.G2.Generator()
	_, err := bls12381.Pairing(bls12381.G1.Zero(), g2, true)
	assert.True(t, errors.Is(err, bls12381.ErrIdentity))
	_, err = bls12381.Pairing(g1, bls12381.G2.Zero(), true)
	assert.True(t, errors.Is(err, bls12381.ErrIdentity))
	_, err = bls12381.PairingBatch([]bls12381.Pair{{G1: g1}}, true)
	assert.True(t, errors.Is(err, bls12381.ErrIdentity))

	off, _ := offSubgroupG1(t)
	_, err = bls12381.Pairing(off, g2, true)
	assert.True(t, errors.Is(err, weierstrass.ErrNotInSubgroup))

	empty, err := bls12381.PairingBatch(nil, true)
	require.NoError(t, err)
	assert.True(t, bls12381.Fields.IsOne(empty))
}

func TestPrecomputesAreCached(t *testing.T) {
	q, err := bls12381.G2.Generator().Multiply(randScalar(t))
	require.NoError(t, err)
	a := bls12381.CalcPrecomputes(q)
	b := bls12381.CalcPrecomputes(q)
	require.NotEmpty(t, a)
	assert.Same(t, &a[0][0], &b[0][0])
	// NAF(|x|) has 64 digits below the leading one, five of them non-zero
	assert.Len(t, a, 64)
	adds := 0
	for _, step := range a {
		adds += len(step) - 1
	}
	assert.Equal(t, 5, adds)
}
