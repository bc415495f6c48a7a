package eddsa

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/curve25519"

	"github.com/smallyu/go-curves/pkg/signature"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestRFC8032Test1(t *testing.T) {
	seed := mustHex(t, "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	pub, err := Ed25519.PublicKey(seed)
	require.NoError(t, err)
	assert.Equal(t, "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a", hex.EncodeToString(pub))

	sig, err := Ed25519.Sign(nil, seed)
	require.NoError(t, err)
	assert.Equal(t, "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b", hex.EncodeToString(sig))
	assert.True(t, Ed25519.Verify(sig, nil, pub))

	bad := append([]byte{}, sig...)
	bad[10] ^= 0x04
	assert.False(t, Ed25519.Verify(bad, nil, pub))
	assert.False(t, Ed25519.Verify(sig[:63], nil, pub))
	assert.False(t, Ed25519.Verify(sig, []byte{0}, pub))
}

func TestMatchesStdlib(t *testing.T) {
	for i := 0; i < 4; i++ {
		seed, err := Ed25519.GenerateKey()
		require.NoError(t, err)
		msg := []byte{byte(i), 'm', 's', 'g'}

		sig, err := Ed25519.Sign(msg, seed)
		require.NoError(t, err)
		std := ed25519.NewKeyFromSeed(seed)
		assert.Equal(t, ed25519.Sign(std, msg), sig)

		pub, err := Ed25519.PublicKey(seed)
		require.NoError(t, err)
		assert.True(t, ed25519.Verify(ed25519.PublicKey(pub), msg, sig))
	}
}

func TestPrehashedAndContext(t *testing.T) {
	seed := mustHex(t, "833fe62409237b9d62ec77587520911e9a759cec1d19755b7da901b96dca3d42")
	// RFC 8032 7.3 Ed25519ph, message "abc"
	sig, err := Ed25519ph.Sign([]byte("abc"), seed)
	require.NoError(t, err)
	assert.Equal(t, "98a70222f0b8121aa9d30f813d683f809e462b469c7ff87639499bb94e6dae4131f85042463c2a355a2003d062adf5aaa10b8c61e636062aaad11c2a26083406", hex.EncodeToString(sig))
	pub, err := Ed25519ph.PublicKey(seed)
	require.NoError(t, err)
	assert.True(t, Ed25519ph.Verify(sig, []byte("abc"), pub))
	assert.False(t, Ed25519.Verify(sig, []byte("abc"), pub), "ph signatures do not verify as pure")

	ctxSig, err := Ed25519ctx.SignWithContext([]byte("msg"), seed, []byte("foo"))
	require.NoError(t, err)
	assert.True(t, Ed25519ctx.VerifyWithContext(ctxSig, []byte("msg"), pub, []byte("foo")))
	assert.False(t, Ed25519ctx.VerifyWithContext(ctxSig, []byte("msg"), pub, []byte("bar")))
	assert.False(t, Ed25519ctx.Verify(ctxSig, []byte("msg"), pub), "ctx variant requires a context")

	_, err = Ed25519ctx.SignWithContext([]byte("msg"), seed, make([]byte, 256))
	assert.Error(t, err)
}

func TestZIP215VersusStrict(t *testing.T) {
	// small-order public key (the point of order 1 encoded as y = 1) with
	// R = identity and s = 0 satisfies the cofactored equation
	identity := make([]byte, 32)
	identity[0] = 1
	sig := append(append([]byte{}, identity...), make([]byte, 32)...)
	msg := []byte("zip215")

	assert.True(t, Ed25519.Verify(sig, msg, identity))
	strict := Ed25519.WithVerifyOptions(VerifyOptions{ZIP215: false})
	assert.False(t, strict.Verify(sig, msg, identity))
}

func TestToMontgomery(t *testing.T) {
	seed, err := Ed25519.GenerateKey()
	require.NoError(t, err)
	pub, err := Ed25519.PublicKey(seed)
	require.NoError(t, err)

	u, err := ToMontgomery(pub)
	require.NoError(t, err)
	scalar, err := ToMontgomeryPrivate(seed)
	require.NoError(t, err)

	want, err := curve25519.X25519(scalar, curve25519.Basepoint)
	require.NoError(t, err)
	assert.Equal(t, want, u)
}

func TestRegistered(t *testing.T) {
	s, err := signature.Lookup("ed25519")
	require.NoError(t, err)
	assert.Same(t, Ed25519, s)
	_, err = signature.Lookup("ed25519ctx")
	assert.Error(t, err)
}
