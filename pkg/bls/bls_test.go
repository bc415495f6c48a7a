package bls

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	gnark "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-curves/pkg/signature"
)

var fixedIKM = bytes.Repeat([]byte{0x42}, 32)

func keyPair(t *testing.T, s signature.Scheme, seed byte) ([]byte, []byte) {
	t.Helper()
	priv, err := KeyGen(bytes.Repeat([]byte{seed}, 32), nil)
	require.NoError(t, err)
	pub, err := s.PublicKey(priv)
	require.NoError(t, err)
	return priv, pub
}

func schemes() []signature.Aggregator {
	return []signature.Aggregator{Long, Short}
}

func TestSignVerify(t *testing.T) {
	for _, s := range schemes() {
		t.Run(s.Name(), func(t *testing.T) {
			priv, pub := keyPair(t, s, 1)
			msg := []byte("hello")
			sig, err := s.Sign(msg, priv)
			require.NoError(t, err)
			assert.True(t, s.Verify(sig, msg, pub))
			assert.False(t, s.Verify(sig, []byte("hellp"), pub))

			_, other := keyPair(t, s, 2)
			assert.False(t, s.Verify(sig, msg, other))

			bad := append([]byte{}, sig...)
			bad[len(bad)-1] ^= 1
			assert.False(t, s.Verify(bad, msg, pub))
			assert.False(t, s.Verify(nil, msg, pub))
			assert.False(t, s.Verify(sig, msg, nil))
			assert.False(t, s.Verify(sig, msg, pub[:len(pub)-1]))

			// the identity is not a valid public key
			identity := make([]byte, len(pub))
			identity[0] = 0xc0
			assert.False(t, s.Verify(sig, msg, identity))
		})
	}
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 48, Long.PublicKeySize())
	assert.Equal(t, 96, Long.SignatureSize())
	assert.Equal(t, 96, Short.PublicKeySize())
	assert.Equal(t, 48, Short.SignatureSize())

	priv, pub := keyPair(t, Long, 3)
	assert.Len(t, pub, 48)
	sig, err := Long.Sign([]byte("m"), priv)
	require.NoError(t, err)
	assert.Len(t, sig, 96)
}

func TestLongMatchesGnark(t *testing.T) {
	priv, pub := keyPair(t, Long, 4)
	d := new(big.Int).SetBytes(priv)
	_, _, g1, _ := gnark.Generators()
	var wantPub gnark.G1Affine
	wantPub.ScalarMultiplication(&g1, d)
	b := wantPub.Bytes()
	assert.Equal(t, b[:], pub)

	msg := []byte("interop")
	h, err := gnark.HashToG2(msg, []byte(LongDST))
	require.NoError(t, err)
	var wantSig gnark.G2Affine
	wantSig.ScalarMultiplication(&h, d)
	sb := wantSig.Bytes()

	sig, err := Long.Sign(msg, priv)
	require.NoError(t, err)
	assert.Equal(t, sb[:], sig)
}

func TestShortMatchesGnark(t *testing.T) {
	priv, pub := keyPair(t, Short, 5)
	d := new(big.Int).SetBytes(priv)
	_, _, _, g2 := gnark.Generators()
	var wantPub gnark.G2Affine
	wantPub.ScalarMultiplication(&g2, d)
	b := wantPub.Bytes()
	assert.Equal(t, b[:], pub)

	msg := []byte("interop")
	h, err := gnark.HashToG1(msg, []byte(ShortDST))
	require.NoError(t, err)
	var wantSig gnark.G1Affine
	wantSig.ScalarMultiplication(&h, d)
	sb := wantSig.Bytes()

	sig, err := Short.Sign(msg, priv)
	require.NoError(t, err)
	assert.Equal(t, sb[:], sig)
}

func TestAggregateAndVerifyBatch(t *testing.T) {
	for _, s := range schemes() {
		t.Run(s.Name(), func(t *testing.T) {
			priv1, pub1 := keyPair(t, s, 10)
			priv2, pub2 := keyPair(t, s, 11)
			msg1, msg2 := []byte("message one"), []byte("message two")

			sig1, err := s.Sign(msg1, priv1)
			require.NoError(t, err)
			sig2, err := s.Sign(msg2, priv2)
			require.NoError(t, err)

			agg, err := s.AggregateSignatures([][]byte{sig1, sig2})
			require.NoError(t, err)
			assert.True(t, s.VerifyBatch(agg, [][]byte{msg1, msg2}, [][]byte{pub1, pub2}))
			assert.False(t, s.VerifyBatch(agg, [][]byte{msg1, []byte("message tw0")}, [][]byte{pub1, pub2}))
			assert.False(t, s.VerifyBatch(agg, [][]byte{msg2, msg1}, [][]byte{pub1, pub2}))
			assert.False(t, s.VerifyBatch(agg, [][]byte{msg1}, [][]byte{pub1, pub2}))
			assert.False(t, s.VerifyBatch(agg, nil, nil))
			assert.False(t, s.VerifyBatch(sig1, [][]byte{msg1, msg2}, [][]byte{pub1, pub2}))
		})
	}
}

func TestVerifyBatchGroupsRepeatedMessages(t *testing.T) {
	s := Short
	msg := []byte("shared")
	other := []byte("other")
	var sigs, msgs, pubs [][]byte
	for i := byte(0); i < 4; i++ {
		priv, pub := keyPair(t, s, 20+i)
		m := msg
		if i == 3 {
			m = other
		}
		sig, err := s.Sign(m, priv)
		require.NoError(t, err)
		sigs, msgs, pubs = append(sigs, sig), append(msgs, m), append(pubs, pub)
	}
	agg, err := s.AggregateSignatures(sigs)
	require.NoError(t, err)
	assert.True(t, s.VerifyBatch(agg, msgs, pubs))

	// the first three signed one message, so a fast aggregate check holds
	agg3, err := s.AggregateSignatures(sigs[:3])
	require.NoError(t, err)
	assert.True(t, s.VerifyAggregate(agg3, msg, pubs[:3]))
	assert.False(t, s.VerifyAggregate(agg3, msg, pubs[:2]))
	assert.False(t, s.VerifyAggregate(agg3, msg, nil))
}

func TestAggregateErrors(t *testing.T) {
	_, err := Long.AggregateSignatures(nil)
	assert.True(t, errors.Is(err, signature.ErrEmptyBatch))

	_, pub := keyPair(t, Long, 30)
	_, err = Long.AggregatePublicKeys([][]byte{pub, {1, 2, 3}})
	var ie *signature.IndexedError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, 1, ie.Index)
}

func TestKeyGen(t *testing.T) {
	a, err := KeyGen(fixedIKM, nil)
	require.NoError(t, err)
	b, err := KeyGen(fixedIKM, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, PrivateKeySize)

	c, err := KeyGen(fixedIKM, []byte("other info"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = KeyGen(make([]byte, 31), nil)
	assert.True(t, errors.Is(err, ErrInvalidPrivateKey))

	priv, err := Long.GenerateKey()
	require.NoError(t, err)
	_, err = Long.PublicKey(priv)
	require.NoError(t, err)

	_, err = Long.PublicKey(make([]byte, 32))
	assert.True(t, errors.Is(err, ErrInvalidPrivateKey))
}

func TestThresholdRecovery(t *testing.T) {
	for _, s := range []*struct {
		name string
		sch  interface {
			signature.Scheme
			RecoverSignature([]SignatureShare) ([]byte, error)
		}
	}{{"long", Long}, {"short", Short}} {
		t.Run(s.name, func(t *testing.T) {
			priv, pub := keyPair(t, s.sch, 40)
			shares, err := SplitKey(priv, 3, 5)
			require.NoError(t, err)
			require.Len(t, shares, 5)

			msg := []byte("threshold")
			var sigShares []SignatureShare
			for _, idx := range []int{1, 3, 5} {
				sig, err := s.sch.Sign(msg, shares[idx-1].Secret)
				require.NoError(t, err)
				sigShares = append(sigShares, SignatureShare{Index: idx, Signature: sig})
			}
			sig, err := s.sch.RecoverSignature(sigShares)
			require.NoError(t, err)
			want, err := s.sch.Sign(msg, priv)
			require.NoError(t, err)
			assert.Equal(t, want, sig)
			assert.True(t, s.sch.Verify(sig, msg, pub))

			// two shares are not enough
			short, err := s.sch.RecoverSignature(sigShares[:2])
			require.NoError(t, err)
			assert.False(t, s.sch.Verify(short, msg, pub))
		})
	}

	_, err := SplitKey(fixedIKM, 4, 3)
	assert.Error(t, err)
	_, err = Long.RecoverSignature(nil)
	assert.True(t, errors.Is(err, signature.ErrEmptyBatch))
}

func TestPublicKeyCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 1
	s := NewShort(cfg)
	priv, pub := keyPair(t, s, 50)
	_, pub2 := keyPair(t, s, 51)
	sig, err := s.Sign([]byte("cached"), priv)
	require.NoError(t, err)

	require.True(t, s.Verify(sig, []byte("cached"), pub))
	assert.Equal(t, 1, s.keys.ItemCount())
	first, ok := s.keys.Get(string(pub))
	require.True(t, ok)

	require.True(t, s.Verify(sig, []byte("cached"), pub))
	again, _ := s.keys.Get(string(pub))
	assert.Same(t, first, again)

	// the cache is full
	assert.False(t, s.Verify(sig, []byte("cached"), pub2))
	assert.Equal(t, 1, s.keys.ItemCount())

	noCache := NewLong(Config{CacheTTL: 0})
	assert.Nil(t, noCache.keys)
	lcfg := DefaultConfig()
	lcfg.CacheTTL = time.Millisecond
	assert.NotNil(t, NewLong(lcfg).keys)
}

func TestCustomDST(t *testing.T) {
	s := NewLong(Config{DST: []byte("MY-APP-DST")})
	priv, pub := keyPair(t, s, 60)
	sig, err := s.Sign([]byte("m"), priv)
	require.NoError(t, err)
	assert.True(t, s.Verify(sig, []byte("m"), pub))
	assert.False(t, Long.Verify(sig, []byte("m"), pub))
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{"bls-long", "bls-short"} {
		sch, err := signature.Lookup(name)
		require.NoError(t, err)
		_, ok := sch.(signature.Aggregator)
		assert.True(t, ok, name)
	}
}
