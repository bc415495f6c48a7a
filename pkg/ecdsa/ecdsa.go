// Package ecdsa provides ECDSA over secp256k1 and P-256 behind the
// signature.Scheme contract, with deterministic RFC 6979 nonces, public
// key recovery and ECDH.
package ecdsa

import (
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/curves"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
	"github.com/smallyu/go-curves/pkg/signature"
)

// Signature formats.
const (
	FormatCompact   = weierstrass.FormatCompact
	FormatDER       = weierstrass.FormatDER
	FormatRecovered = weierstrass.FormatRecovered
)

// Signature is a parsed ECDSA signature.
type Signature = weierstrass.Signature

// Config tunes a Scheme.
type Config struct {
	// LowS normalizes signatures to s <= n/2 and rejects high s.
	LowS bool
	// Prehash hashes messages with SHA-256. When false messages must
	// already be digests.
	Prehash bool
	// Format is the encoding produced by Sign. Verify accepts compact
	// and DER regardless.
	Format weierstrass.SignatureFormat
	// CompressedKeys selects 33-byte SEC1 public keys.
	CompressedKeys bool
}

// DefaultConfig signs SHA-256 prehashed messages with low s into compact
// signatures and compressed keys.
func DefaultConfig() Config {
	return Config{LowS: true, Prehash: true, Format: FormatCompact, CompressedKeys: true}
}

// engine is the curve-independent surface of weierstrass.ECDSA.
type engine interface {
	RandomPrivateKey() ([]byte, error)
	PublicKey(priv []byte, compressed bool) ([]byte, error)
	SharedSecret(priv, peer []byte, compressed bool) ([]byte, error)
	Sign(msg, priv []byte, opts ...weierstrass.Option) (*Signature, error)
	Verify(sig, msg, pub []byte, opts ...weierstrass.Option) bool
	VerifySignature(sig *Signature, msg, pub []byte, opts ...weierstrass.Option) bool
	RecoverPublicKey(sig *Signature, msg []byte, compressed bool, opts ...weierstrass.Option) ([]byte, error)
	EncodeSignature(sig *Signature, format weierstrass.SignatureFormat) ([]byte, error)
	ParseSignature(sig []byte, format weierstrass.SignatureFormat) (*Signature, error)
}

// Scheme is ECDSA over one curve.
type Scheme struct {
	name string
	e    engine
	cfg  Config
}

// NewSecp256k1 returns ECDSA over secp256k1 with SHA-256.
func NewSecp256k1(cfg Config) *Scheme {
	return &Scheme{name: "ecdsa-secp256k1", e: weierstrass.NewECDSA(curves.Secp256k1, sha256.New), cfg: cfg}
}

// NewP256 returns ECDSA over P-256 with SHA-256.
func NewP256(cfg Config) *Scheme {
	return &Scheme{name: "ecdsa-p256", e: weierstrass.NewECDSA(curves.P256, sha256.New), cfg: cfg}
}

// Registered instances with DefaultConfig.
var (
	Secp256k1 = NewSecp256k1(DefaultConfig())
	P256      = NewP256(DefaultConfig())
)

func init() {
	signature.MustRegister(Secp256k1)
	signature.MustRegister(P256)
}

func (s *Scheme) options(extra ...weierstrass.Option) []weierstrass.Option {
	opts := []weierstrass.Option{weierstrass.WithLowS(s.cfg.LowS), weierstrass.WithPrehash(s.cfg.Prehash)}
	return append(opts, extra...)
}

// Name returns the registry name.
func (s *Scheme) Name() string { return s.name }

// Config returns the configuration of s.
func (s *Scheme) Config() Config { return s.cfg }

// GenerateKey returns a random private key in [1, n).
func (s *Scheme) GenerateKey() ([]byte, error) { return s.e.RandomPrivateKey() }

// PublicKey returns the SEC1 public key of priv.
func (s *Scheme) PublicKey(priv []byte) ([]byte, error) {
	return s.e.PublicKey(priv, s.cfg.CompressedKeys)
}

// Sign signs msg deterministically.
func (s *Scheme) Sign(msg, priv []byte) ([]byte, error) {
	sig, err := s.e.Sign(msg, priv, s.options()...)
	if err != nil {
		return nil, err
	}
	return s.e.EncodeSignature(sig, s.cfg.Format)
}

// SignHedged signs msg with extra entropy mixed into the nonce. A nil
// entropy draws fresh random bytes.
func (s *Scheme) SignHedged(msg, priv, entropy []byte) ([]byte, error) {
	opt := weierstrass.WithRandomEntropy()
	if entropy != nil {
		opt = weierstrass.WithExtraEntropy(entropy)
	}
	sig, err := s.e.Sign(msg, priv, s.options(opt)...)
	if err != nil {
		return nil, err
	}
	return s.e.EncodeSignature(sig, s.cfg.Format)
}

// SignRecoverable returns recovery || r || s.
func (s *Scheme) SignRecoverable(msg, priv []byte) ([]byte, error) {
	sig, err := s.e.Sign(msg, priv, s.options()...)
	if err != nil {
		return nil, err
	}
	return s.e.EncodeSignature(sig, FormatRecovered)
}

// Verify reports whether sig, compact or DER, is valid for msg and pub.
func (s *Scheme) Verify(sig, msg, pub []byte) bool {
	return signature.GuardVerify(s.name, func() bool {
		if len(sig) == 2*32+1 {
			// a recoverable signature carries the compact form after its id
			parsed, err := s.e.ParseSignature(sig, FormatRecovered)
			if err == nil {
				return s.e.VerifySignature(parsed, msg, pub, s.options()...)
			}
		}
		return s.e.Verify(sig, msg, pub, s.options()...)
	})
}

// RecoverPublicKey returns the public key behind a recoverable
// signature.
func (s *Scheme) RecoverPublicKey(sig, msg []byte) ([]byte, error) {
	parsed, err := s.e.ParseSignature(sig, FormatRecovered)
	if err != nil {
		return nil, err
	}
	return s.e.RecoverPublicKey(parsed, msg, s.cfg.CompressedKeys, s.options()...)
}

// SharedSecret computes the ECDH point priv·peer in SEC1 form.
func (s *Scheme) SharedSecret(priv, peer []byte) ([]byte, error) {
	out, err := s.e.SharedSecret(priv, peer, s.cfg.CompressedKeys)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: shared secret", s.name)
	}
	return out, nil
}

// ParseSignature decodes sig in the given format.
func (s *Scheme) ParseSignature(sig []byte, format weierstrass.SignatureFormat) (*Signature, error) {
	return s.e.ParseSignature(sig, format)
}
