package weierstrass_test

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decredecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-curves/internal/crypto/curves"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestECDSAP256RFC6979(t *testing.T) {
	// RFC 6979 A.2.5, SHA-256, message "sample"
	e := weierstrass.NewECDSA(curves.P256, sha256.New)
	priv := mustHex("c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a622b120f6721")
	sig, err := e.Sign([]byte("sample"), priv, weierstrass.WithPrehash(true), weierstrass.WithLowS(false))
	require.NoError(t, err)
	assert.Equal(t, "efd48b2aacb6a8fd1140dd9cd45e81d69d2c877b56aaf991c34d0ea84eaf3716", hex.EncodeToString(sig.R.Bytes()))
	assert.Equal(t, "f7cb1c942d657c41d436c7a1b6e29f65f3e900dbb9aff4064dc4ab2f843acda8", hex.EncodeToString(sig.S.Bytes()))

	pub, err := e.PublicKey(priv, false)
	require.NoError(t, err)
	assert.Equal(t, "0460fed4ba255a9d31c961eb74c6356d68c049b8923b61fa6ce669622e60f29fb67903fe1008b8bc99a41ae9e95628bc64f2f1b20c2d7e9f5177a3c294d4462299", hex.EncodeToString(pub))

	compact, err := e.EncodeSignature(sig, weierstrass.FormatCompact)
	require.NoError(t, err)
	assert.True(t, e.Verify(compact, []byte("sample"), pub, weierstrass.WithPrehash(true), weierstrass.WithLowS(false)))
	// the default rejects high s
	assert.True(t, e.HasHighS(sig))
	assert.False(t, e.Verify(compact, []byte("sample"), pub, weierstrass.WithPrehash(true)))

	low := e.NormalizeS(sig)
	lowBytes, err := e.EncodeSignature(low, weierstrass.FormatDER)
	require.NoError(t, err)
	assert.True(t, e.Verify(lowBytes, []byte("sample"), pub, weierstrass.WithPrehash(true)))
}

func TestECDSASecp256k1MatchesDecred(t *testing.T) {
	e := weierstrass.NewECDSA(curves.Secp256k1, sha256.New)
	for i := 0; i < 8; i++ {
		priv, err := e.RandomPrivateKey()
		require.NoError(t, err)
		digest := sha256.Sum256([]byte{byte(i), 'm', 's', 'g'})

		sig, err := e.Sign(digest[:], priv)
		require.NoError(t, err)

		key := secp256k1.PrivKeyFromBytes(priv)
		want := decredecdsa.SignCompact(key, digest[:], true)
		got, err := e.EncodeSignature(sig, weierstrass.FormatCompact)
		require.NoError(t, err)
		assert.Equal(t, want[1:], got)
		assert.Equal(t, int(want[0]-27-4), sig.Recovery)

		der, err := e.EncodeSignature(sig, weierstrass.FormatDER)
		require.NoError(t, err)
		assert.Equal(t, decredecdsa.Sign(key, digest[:]).Serialize(), der)

		pub, err := e.PublicKey(priv, true)
		require.NoError(t, err)
		assert.Equal(t, key.PubKey().SerializeCompressed(), pub)
		assert.True(t, e.Verify(got, digest[:], pub))
		assert.True(t, e.Verify(der, digest[:], pub))

		rec, err := e.RecoverPublicKey(sig, digest[:], true)
		require.NoError(t, err)
		assert.Equal(t, pub, rec)
	}
}

func TestECDSAVerifyRejects(t *testing.T) {
	e := weierstrass.NewECDSA(curves.Secp256k1, sha256.New)
	priv, err := e.RandomPrivateKey()
	require.NoError(t, err)
	pub, err := e.PublicKey(priv, true)
	require.NoError(t, err)
	msg := sha256.Sum256([]byte("hello"))
	sig, err := e.Sign(msg[:], priv)
	require.NoError(t, err)
	good, err := e.EncodeSignature(sig, weierstrass.FormatCompact)
	require.NoError(t, err)
	require.True(t, e.Verify(good, msg[:], pub))

	other := sha256.Sum256([]byte("other"))
	assert.False(t, e.Verify(good, other[:], pub))

	n := curves.Secp256k1.Order()
	zeroR := append(make([]byte, 32), good[32:]...)
	assert.False(t, e.Verify(zeroR, msg[:], pub))
	bigS := append(append([]byte{}, good[:32]...), n.Bytes()...)
	assert.False(t, e.Verify(bigS, msg[:], pub))

	assert.False(t, e.Verify(good[:63], msg[:], pub))
	assert.False(t, e.Verify(good, msg[:], pub[:32]))
	assert.False(t, e.Verify(nil, msg[:], pub))
	assert.False(t, e.Verify(good, msg[:], append([]byte{0x04}, pub[1:]...)))

	// the s' = n - s twin only verifies when high s is allowed
	high := &weierstrass.Signature{R: sig.R, S: new(big.Int).Sub(n, sig.S), Recovery: -1}
	highBytes, err := e.EncodeSignature(high, weierstrass.FormatCompact)
	require.NoError(t, err)
	assert.False(t, e.Verify(highBytes, msg[:], pub))
	assert.True(t, e.Verify(highBytes, msg[:], pub, weierstrass.WithLowS(false)))
}

func TestECDSADERStrict(t *testing.T) {
	e := weierstrass.NewECDSA(curves.Secp256k1, sha256.New)
	sig := &weierstrass.Signature{R: big.NewInt(0x7f), S: big.NewInt(0x80), Recovery: -1}
	der, err := e.EncodeSignature(sig, weierstrass.FormatDER)
	require.NoError(t, err)
	assert.Equal(t, "300702017f02020080", hex.EncodeToString(der))

	parsed, err := e.ParseSignature(der, weierstrass.FormatDER)
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.R.Cmp(sig.R))
	assert.Equal(t, 0, parsed.S.Cmp(sig.S))

	bad := map[string]string{
		"trailing byte":      "300702017f0202008000",
		"non-minimal int":    "30080202007f02020080",
		"negative r":         "300702018002020080",
		"wrong tag":          "310702017f02020080",
		"non-minimal length": "30810702017f02020080",
		"truncated":          "300702017f020200",
		"zero r":             "300702010002020080",
	}
	for name, h := range bad {
		_, err := e.ParseSignature(mustHex(h), weierstrass.FormatDER)
		assert.Error(t, err, name)
	}
}

func TestECDSAExtraEntropy(t *testing.T) {
	e := weierstrass.NewECDSA(curves.P256, sha256.New)
	priv, err := e.RandomPrivateKey()
	require.NoError(t, err)
	pub, err := e.PublicKey(priv, true)
	require.NoError(t, err)
	msg := sha256.Sum256([]byte("hedged"))

	a, err := e.Sign(msg[:], priv)
	require.NoError(t, err)
	b, err := e.Sign(msg[:], priv)
	require.NoError(t, err)
	assert.Equal(t, 0, a.R.Cmp(b.R), "deterministic without entropy")

	c, err := e.Sign(msg[:], priv, weierstrass.WithExtraEntropy([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.NotEqual(t, 0, a.R.Cmp(c.R))
	d, err := e.Sign(msg[:], priv, weierstrass.WithRandomEntropy())
	require.NoError(t, err)
	for _, s := range []*weierstrass.Signature{c, d} {
		enc, err := e.EncodeSignature(s, weierstrass.FormatCompact)
		require.NoError(t, err)
		assert.True(t, e.Verify(enc, msg[:], pub))
	}
}

func TestECDSASharedSecret(t *testing.T) {
	e := weierstrass.NewECDSA(curves.Secp256k1, sha256.New)
	a, err := e.RandomPrivateKey()
	require.NoError(t, err)
	b, err := e.RandomPrivateKey()
	require.NoError(t, err)
	pa, _ := e.PublicKey(a, true)
	pb, _ := e.PublicKey(b, true)

	ab, err := e.SharedSecret(a, pb, true)
	require.NoError(t, err)
	ba, err := e.SharedSecret(b, pa, true)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)

	want := secp256k1.GenerateSharedSecret(secp256k1.PrivKeyFromBytes(a), secp256k1.PrivKeyFromBytes(b).PubKey())
	assert.Equal(t, want, ab[1:])

	_, err = e.SharedSecret(a, []byte{0x02}, true)
	assert.Error(t, err)
}

func TestPrivateKeyValidation(t *testing.T) {
	e := weierstrass.NewECDSA(curves.Secp256k1, sha256.New)
	_, err := e.PublicKey(make([]byte, 32), true)
	assert.Error(t, err)
	_, err = e.PublicKey(curves.Secp256k1.Order().Bytes(), true)
	assert.Error(t, err)
	_, err = e.PublicKey([]byte{1}, true)
	assert.Error(t, err)

	_, err = e.MapSeedToPrivateKey(make([]byte, 16))
	assert.Error(t, err)
	k, err := e.MapSeedToPrivateKey(make([]byte, 48))
	require.NoError(t, err)
	assert.Equal(t, 0, new(big.Int).SetBytes(k).Cmp(big.NewInt(1)))
}
