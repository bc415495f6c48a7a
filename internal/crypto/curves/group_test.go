package curves

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupScalar(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g, err := ByName(name)
			require.NoError(t, err)

			s1, err := g.NewScalar()
			require.NoError(t, err)
			assert.NotZero(t, s1.BigInt().Sign())

			val := big.NewInt(12345)
			s2 := g.NewScalarFromBigInt(val)
			assert.Equal(t, val, s2.BigInt())
			assert.Equal(t, big.NewInt(24690), s2.Add(s2).BigInt())
			assert.Equal(t, new(big.Int).Mul(val, val), s2.Mul(s2).BigInt())
			assert.Equal(t, big.NewInt(1), s2.Invert().Mul(s2).BigInt())

			// reduction modulo the order
			wrapped := g.NewScalarFromBigInt(new(big.Int).Add(g.Order(), val))
			assert.Equal(t, val, wrapped.BigInt())
		})
	}
}

func TestGroupPoint(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g, err := ByName(name)
			require.NoError(t, err)

			base := g.BasePoint()
			two := g.NewScalarFromBigInt(big.NewInt(2))
			p2 := base.ScalarMult(two)
			assert.True(t, p2.Equal(base.Add(base)))
			assert.Equal(t, p2.Bytes(), base.Add(base).Bytes())

			decoded, err := g.NewPointFromBytes(p2.Bytes())
			require.NoError(t, err)
			assert.True(t, decoded.Equal(p2))

			// n-1 times G plus G is the identity
			nMinus1 := g.NewScalarFromBigInt(new(big.Int).Sub(g.Order(), big.NewInt(1)))
			assert.True(t, base.ScalarMult(nMinus1).Add(base).IsIdentity())
			assert.True(t, base.ScalarMult(g.NewScalarFromBigInt(big.NewInt(0))).Equal(g.Identity()))
		})
	}
}

func TestGroupRejectsMixing(t *testing.T) {
	a, err := ByName(NameSecp256k1)
	require.NoError(t, err)
	b, err := ByName(NameP256)
	require.NoError(t, err)
	assert.False(t, a.BasePoint().Equal(b.BasePoint()))
	assert.Panics(t, func() { a.BasePoint().Add(b.BasePoint()) })
}

func TestHashToPoint(t *testing.T) {
	for _, name := range []string{NameP256, NameBLS12381G1, NameBLS12381G2} {
		g, err := ByName(name)
		require.NoError(t, err)
		p, err := g.HashToPoint([]byte("abc"), nil)
		require.NoError(t, err, name)
		q, err := g.HashToPoint([]byte("abc"), nil)
		require.NoError(t, err, name)
		assert.True(t, p.Equal(q), name)
		assert.False(t, p.IsIdentity(), name)
	}

	g, err := ByName(NameSecp256k1)
	require.NoError(t, err)
	_, err = g.HashToPoint([]byte("abc"), nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("curve448")
	assert.True(t, errors.Is(err, ErrUnknownCurve))
	assert.Len(t, Names(), 5)
}

func TestEdwardsToMontgomery(t *testing.T) {
	seed := make([]byte, 32)
	pub, err := Ed25519Pure.PublicKey(seed)
	require.NoError(t, err)
	u, err := EdwardsToMontgomeryU(pub)
	require.NoError(t, err)
	assert.Len(t, u, 32)

	priv, err := EdwardsToMontgomeryPriv(seed)
	require.NoError(t, err)
	assert.Zero(t, priv[0]&7)
	assert.Equal(t, byte(64), priv[31]&0xc0)
}

func TestEd25519Order(t *testing.T) {
	// l = 2^252 + 27742317777372353535851937790883648493
	l, ok := new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)
	require.True(t, ok)
	assert.Equal(t, 0, Ed25519Order.Cmp(l))
	assert.Equal(t, 253, Ed25519Order.BitLen())

	g := Ed25519.Generator()
	assert.True(t, g.IsTorsionFree())
	assert.False(t, g.IsSmallOrder())
	// (l-1)·G = -G
	last, err := g.MultiplyUnsafe(new(big.Int).Sub(l, big.NewInt(1)))
	require.NoError(t, err)
	assert.True(t, last.Equal(g.Negate()))
}
