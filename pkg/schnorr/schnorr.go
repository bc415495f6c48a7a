// Package schnorr implements BIP340 Schnorr signatures over secp256k1
// with 32-byte x-only public keys.
package schnorr

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/curves"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
	"github.com/smallyu/go-curves/pkg/signature"
)

// Sizes of the encodings.
const (
	PrivateKeySize = 32
	PublicKeySize  = 32
	SignatureSize  = 64
	AuxSize        = 32
)

// Common errors
var (
	ErrInvalidPrivateKey = errors.New("schnorr: invalid private key")
	ErrInvalidPublicKey  = errors.New("schnorr: invalid public key")
	ErrInvalidSignature  = errors.New("schnorr: invalid signature")
	ErrInvalidAux        = errors.New("schnorr: auxiliary randomness must be 32 bytes")
)

type point = weierstrass.Point[secp256k1.FieldVal]

// taggedHash computes SHA256(SHA256(tag) || SHA256(tag) || parts...).
type taggedHash [sha256.Size]byte

func newTag(tag string) taggedHash { return sha256.Sum256([]byte(tag)) }

func (t taggedHash) sum(parts ...[]byte) []byte {
	h := sha256.New()
	h.Write(t[:])
	h.Write(t[:])
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

var (
	tagAux       = newTag("BIP0340/aux")
	tagNonce     = newTag("BIP0340/nonce")
	tagChallenge = newTag("BIP0340/challenge")
)

// Scheme is BIP340 over secp256k1.
type Scheme struct {
	name string
	c    *weierstrass.Curve[secp256k1.FieldVal]
}

// BIP340 is the registered instance.
var BIP340 = &Scheme{name: "bip340", c: curves.Secp256k1}

func init() {
	signature.MustRegister(BIP340)
}

// Name returns the registry name.
func (s *Scheme) Name() string { return s.name }

func (s *Scheme) xBytes(p *point) []byte {
	x, _ := p.ToAffine()
	return s.c.Field().Encode(x)
}

func (s *Scheme) hasEvenY(p *point) bool {
	_, y := p.ToAffine()
	return !s.c.Field().IsOdd(y)
}

func (s *Scheme) parsePrivateKey(priv []byte) (*big.Int, error) {
	if len(priv) != PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", PrivateKeySize, len(priv))
	}
	d := new(big.Int).SetBytes(priv)
	if !s.c.Scalars().IsValidNot0(d) {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "out of range")
	}
	return d, nil
}

// liftX returns the point with x-coordinate pub and even y.
func (s *Scheme) liftX(pub []byte) (*point, error) {
	if len(pub) != PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "expected %d bytes, got %d", PublicKeySize, len(pub))
	}
	p, err := s.c.FromBytes(append([]byte{0x02}, pub...))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	return p, nil
}

// GenerateKey returns a uniformly random private key.
func (s *Scheme) GenerateKey() ([]byte, error) {
	n := s.c.Order()
	k, err := rand.Int(rand.Reader, new(big.Int).Sub(n, big.NewInt(1)))
	if err != nil {
		return nil, errors.Wrap(err, "schnorr: reading randomness")
	}
	return s.c.Scalars().Encode(k.Add(k, big.NewInt(1))), nil
}

// PublicKey returns the x-only public key of priv.
func (s *Scheme) PublicKey(priv []byte) ([]byte, error) {
	d, err := s.parsePrivateKey(priv)
	if err != nil {
		return nil, err
	}
	p, err := s.c.Generator().Multiply(d)
	if err != nil {
		return nil, err
	}
	return s.xBytes(p), nil
}

// Sign signs msg with fresh auxiliary randomness.
func (s *Scheme) Sign(msg, priv []byte) ([]byte, error) {
	aux := make([]byte, AuxSize)
	if _, err := io.ReadFull(rand.Reader, aux); err != nil {
		return nil, errors.Wrap(err, "schnorr: reading randomness")
	}
	return s.SignWithAux(msg, priv, aux)
}

// SignWithAux signs msg with the given 32 bytes of auxiliary randomness.
// An all-zero aux makes signing deterministic.
func (s *Scheme) SignWithAux(msg, priv, aux []byte) ([]byte, error) {
	if len(aux) != AuxSize {
		return nil, ErrInvalidAux
	}
	n := s.c.Scalars()
	d, err := s.parsePrivateKey(priv)
	if err != nil {
		return nil, err
	}
	p, err := s.c.Generator().Multiply(d)
	if err != nil {
		return nil, err
	}
	if !s.hasEvenY(p) {
		d = n.Neg(d)
	}
	px := s.xBytes(p)

	t := n.Encode(d)
	mask := tagAux.sum(aux)
	for i := range t {
		t[i] ^= mask[i]
	}
	k := n.FromBig(new(big.Int).SetBytes(tagNonce.sum(t, px, msg)))
	if k.Sign() == 0 {
		return nil, errors.Wrap(ErrInvalidSignature, "nonce is zero")
	}
	r, err := s.c.Generator().Multiply(k)
	if err != nil {
		return nil, err
	}
	if !s.hasEvenY(r) {
		k = n.Neg(k)
	}
	rx := s.xBytes(r)
	e := n.FromBig(new(big.Int).SetBytes(tagChallenge.sum(rx, px, msg)))

	sig := append(rx, n.Encode(n.Add(k, n.Mul(e, d)))...)
	if !s.verify(sig, msg, px) {
		return nil, errors.Wrap(ErrInvalidSignature, "produced signature does not verify")
	}
	return sig, nil
}

// Verify checks a 64-byte signature against an x-only public key.
// Malformed input yields false.
func (s *Scheme) Verify(sig, msg, pub []byte) bool {
	return signature.GuardVerify(s.name, func() bool { return s.verify(sig, msg, pub) })
}

func (s *Scheme) verify(sig, msg, pub []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	p, err := s.liftX(pub)
	if err != nil {
		return false
	}
	f, n := s.c.Field(), s.c.Scalars()
	rx, err := f.Decode(sig[:32])
	if err != nil {
		return false
	}
	sv := new(big.Int).SetBytes(sig[32:])
	if !n.IsValid(sv) {
		return false
	}
	e := n.FromBig(new(big.Int).SetBytes(tagChallenge.sum(sig[:32], pub, msg)))

	// R = s·G - e·P
	r, ok, err := s.c.Generator().MultiplyAndAddUnsafe(p, sv, n.Neg(e))
	if err != nil || !ok {
		return false
	}
	x, y := r.ToAffine()
	return !f.IsOdd(y) && f.Equal(x, rx)
}
