// Package eddsa provides the RFC 8032 Ed25519 variants behind the
// signature.Scheme contract.
package eddsa

import (
	fe "filippo.io/edwards25519/field"

	"github.com/smallyu/go-curves/internal/crypto/curves"
	"github.com/smallyu/go-curves/internal/crypto/edwards"
	"github.com/smallyu/go-curves/pkg/signature"
)

// Sizes of Ed25519 keys and signatures.
const (
	SeedSize      = 32
	PublicKeySize = 32
	SignatureSize = 64
)

// VerifyOptions selects the acceptance rules of Verify.
type VerifyOptions struct {
	// ZIP215 accepts non-canonical encodings and small-order keys as
	// consensus systems built on ZIP 215 require. When false, the strict
	// RFC 8032 rules apply.
	ZIP215 bool
}

// DefaultVerifyOptions enables ZIP215.
func DefaultVerifyOptions() VerifyOptions { return VerifyOptions{ZIP215: true} }

// Scheme is one Ed25519 variant.
type Scheme struct {
	name string
	e    *edwards.EdDSA[fe.Element]
	opts VerifyOptions
}

// New wraps an EdDSA instance.
func New(name string, e *edwards.EdDSA[fe.Element], opts VerifyOptions) *Scheme {
	return &Scheme{name: name, e: e, opts: opts}
}

// Registered variants. Ed25519ctx needs a context and is reached through
// SignWithContext and VerifyWithContext only.
var (
	Ed25519    = New("ed25519", curves.Ed25519Pure, DefaultVerifyOptions())
	Ed25519ph  = New("ed25519ph", curves.Ed25519ph, DefaultVerifyOptions())
	Ed25519ctx = New("ed25519ctx", curves.Ed25519ctx, DefaultVerifyOptions())
)

func init() {
	signature.MustRegister(Ed25519)
	signature.MustRegister(Ed25519ph)
}

// WithVerifyOptions returns a copy of s using opts.
func (s *Scheme) WithVerifyOptions(opts VerifyOptions) *Scheme {
	cp := *s
	cp.opts = opts
	return &cp
}

// Name returns the registry name.
func (s *Scheme) Name() string { return s.name }

// GenerateKey returns a random 32-byte seed.
func (s *Scheme) GenerateKey() ([]byte, error) { return s.e.RandomPrivateKey() }

// PublicKey returns the encoded public key of a seed.
func (s *Scheme) PublicKey(priv []byte) ([]byte, error) { return s.e.PublicKey(priv) }

// Sign returns R || S over msg.
func (s *Scheme) Sign(msg, priv []byte) ([]byte, error) { return s.e.Sign(msg, priv, nil) }

// SignWithContext signs with a context string of at most 255 bytes.
func (s *Scheme) SignWithContext(msg, priv, ctx []byte) ([]byte, error) {
	return s.e.Sign(msg, priv, ctx)
}

// Verify checks sig with the configured acceptance rules.
func (s *Scheme) Verify(sig, msg, pub []byte) bool {
	return s.VerifyWithContext(sig, msg, pub, nil)
}

// VerifyWithContext checks a signature made with SignWithContext.
func (s *Scheme) VerifyWithContext(sig, msg, pub, ctx []byte) bool {
	return signature.GuardVerify(s.name, func() bool {
		return s.e.Verify(sig, msg, pub, edwards.WithZIP215(s.opts.ZIP215), edwards.WithContext(ctx))
	})
}

// ToMontgomery converts an Ed25519 public key to its X25519 u-coordinate.
func ToMontgomery(pub []byte) ([]byte, error) { return curves.EdwardsToMontgomeryU(pub) }

// ToMontgomeryPrivate converts an Ed25519 seed to its X25519 scalar.
func ToMontgomeryPrivate(seed []byte) ([]byte, error) { return curves.EdwardsToMontgomeryPriv(seed) }
