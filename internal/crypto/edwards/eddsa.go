package edwards

import (
	"crypto/rand"
	"hash"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EdDSA errors
var (
	ErrInvalidPrivateKey = errors.New("eddsa: invalid private key")
	ErrContext           = errors.New("eddsa: context not supported")
)

// DomainFunc prefixes data with the domain separation string for the
// given context and prehash flag.
type DomainFunc func(data, ctx []byte, prehashed bool) ([]byte, error)

// EdDSAConfig describes one EdDSA instance over a curve.
type EdDSAConfig struct {
	Name string
	Hash func() hash.Hash
	// AdjustScalarBytes clamps the first half of the hashed secret.
	AdjustScalarBytes func([]byte) []byte
	// Domain defaults to PureDomain.
	Domain DomainFunc
	// Prehash, when set, is applied to messages (the "ph" variants).
	Prehash func([]byte) []byte
}

// PureDomain is the domain of plain EdDSA: no context and no prehash.
func PureDomain(data, ctx []byte, prehashed bool) ([]byte, error) {
	if len(ctx) > 0 || prehashed {
		return nil, errors.Wrap(ErrContext, "contexts and prehash need a dom2 domain")
	}
	return data, nil
}

// EdDSA signs and verifies with a fixed curve and hash.
type EdDSA[T any] struct {
	curve *Curve[T]
	cfg   EdDSAConfig
	rand  io.Reader
	log   *logrus.Entry
}

// NewEdDSA returns the scheme described by cfg over c.
func NewEdDSA[T any](c *Curve[T], cfg EdDSAConfig) *EdDSA[T] {
	if cfg.Domain == nil {
		cfg.Domain = PureDomain
	}
	if cfg.AdjustScalarBytes == nil {
		cfg.AdjustScalarBytes = func(b []byte) []byte { return b }
	}
	return &EdDSA[T]{curve: c, cfg: cfg, rand: rand.Reader, log: log.WithField("scheme", cfg.Name)}
}

// Curve returns the underlying curve.
func (e *EdDSA[T]) Curve() *Curve[T] { return e.curve }

// Name returns the instance name.
func (e *EdDSA[T]) Name() string { return e.cfg.Name }

// KeyLen is the length of private keys, public keys and each
// signature half.
func (e *EdDSA[T]) KeyLen() int { return e.curve.f.ByteLen() }

func (e *EdDSA[T]) hash(parts ...[]byte) []byte {
	h := e.cfg.Hash()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func (e *EdDSA[T]) modNLE(b []byte) *big.Int {
	return e.curve.fn.FromBig(new(big.Int).SetBytes(reversed(b)))
}

// ExtendedKey is the expanded form of a private key.
type ExtendedKey struct {
	Head       []byte
	Prefix     []byte
	Scalar     *big.Int
	PointBytes []byte
}

// ExpandPrivateKey hashes the seed into the clamped scalar and the nonce
// prefix (RFC 8032 5.1.5).
func (e *EdDSA[T]) ExpandPrivateKey(priv []byte) (*ExtendedKey, error) {
	l := e.KeyLen()
	if len(priv) != l {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", l, len(priv))
	}
	hashed := e.hash(priv)
	if len(hashed) < 2*l {
		return nil, errors.Errorf("eddsa: hash output of %d bytes is too short", len(hashed))
	}
	head := e.cfg.AdjustScalarBytes(append([]byte{}, hashed[:l]...))
	scalar := e.modNLE(head)
	point, err := e.curve.base.Multiply(scalar)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPrivateKey, err.Error())
	}
	return &ExtendedKey{
		Head:       head,
		Prefix:     append([]byte{}, hashed[l:2*l]...),
		Scalar:     scalar,
		PointBytes: point.ToBytes(),
	}, nil
}

// RandomPrivateKey returns a fresh random seed.
func (e *EdDSA[T]) RandomPrivateKey() ([]byte, error) {
	b := make([]byte, e.KeyLen())
	if _, err := io.ReadFull(e.rand, b); err != nil {
		return nil, errors.Wrap(err, "eddsa: reading randomness")
	}
	return b, nil
}

// PublicKey returns the encoded public key of a seed.
func (e *EdDSA[T]) PublicKey(priv []byte) ([]byte, error) {
	k, err := e.ExpandPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return k.PointBytes, nil
}

func (e *EdDSA[T]) hashDomainToScalar(ctx []byte, parts ...[]byte) (*big.Int, error) {
	var msg []byte
	for _, p := range parts {
		msg = append(msg, p...)
	}
	data, err := e.cfg.Domain(msg, ctx, e.cfg.Prehash != nil)
	if err != nil {
		return nil, err
	}
	return e.modNLE(e.hash(data)), nil
}

// Sign returns R || S over msg with an optional context.
func (e *EdDSA[T]) Sign(msg, priv, ctx []byte) ([]byte, error) {
	if e.cfg.Prehash != nil {
		msg = e.cfg.Prehash(msg)
	}
	k, err := e.ExpandPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	fn := e.curve.fn

	// r = H(dom || prefix || M)
	r, err := e.hashDomainToScalar(ctx, k.Prefix, msg)
	if err != nil {
		return nil, err
	}
	var R []byte
	if r.Sign() == 0 {
		R = e.curve.zero.ToBytes()
	} else {
		rp, err := e.curve.base.Multiply(r)
		if err != nil {
			return nil, err
		}
		R = rp.ToBytes()
	}
	// k = H(dom || R || A || M), S = r + k·s mod n
	h, err := e.hashDomainToScalar(ctx, R, k.PointBytes, msg)
	if err != nil {
		return nil, err
	}
	s := fn.Add(r, fn.Mul(h, k.Scalar))
	return append(R, fn.Encode(s)...), nil
}

// VerifyOption tunes Verify.
type VerifyOption func(*verifyOptions)

type verifyOptions struct {
	zip215 bool
	ctx    []byte
}

// WithZIP215 selects ZIP 215 acceptance rules (the default) or, when
// false, the strict RFC 8032 / FIPS 186-5 rules that reject
// non-canonical encodings and small-order public keys.
func WithZIP215(v bool) VerifyOption { return func(o *verifyOptions) { o.zip215 = v } }

// WithContext sets the ctx string for the ctx and ph variants.
func WithContext(ctx []byte) VerifyOption { return func(o *verifyOptions) { o.ctx = ctx } }

// Verify checks sig over msg for the encoded public key pub using the
// cofactored equation [8][S]B = [8]R + [8][k]A. Malformed input yields
// false.
func (e *EdDSA[T]) Verify(sig, msg, pub []byte, opts ...VerifyOption) bool {
	o := verifyOptions{zip215: true}
	for _, opt := range opts {
		opt(&o)
	}
	l := e.KeyLen()
	if len(sig) != 2*l || len(pub) != l {
		return false
	}
	if e.cfg.Prehash != nil {
		msg = e.cfg.Prehash(msg)
	}
	rBytes := sig[:l]
	s := new(big.Int).SetBytes(reversed(sig[l:]))

	A, err := e.curve.FromBytes(pub, o.zip215)
	if err != nil {
		e.log.WithError(err).Debug("public key rejected")
		return false
	}
	R, err := e.curve.FromBytes(rBytes, o.zip215)
	if err != nil {
		e.log.WithError(err).Debug("R rejected")
		return false
	}
	SB, err := e.curve.base.MultiplyUnsafe(s)
	if err != nil {
		// s >= n
		return false
	}
	if !o.zip215 && A.IsSmallOrder() {
		return false
	}
	k, err := e.hashDomainToScalar(o.ctx, rBytes, pub, msg)
	if err != nil {
		return false
	}
	kA, err := A.MultiplyUnsafe(k)
	if err != nil {
		return false
	}
	return R.Add(kA).Subtract(SB).ClearCofactor().IsZero()
}
