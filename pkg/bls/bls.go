// Package bls implements BLS signatures over BLS12-381 in both layouts:
// Long signatures live in G2 with public keys in G1, Short signatures
// live in G1 with public keys in G2. Signatures and keys use the ZCash
// compressed encoding.
package bls

import (
	"math/big"
	"runtime"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/smallyu/go-curves/internal/crypto/bls12381"
	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/hashtocurve"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
	"github.com/smallyu/go-curves/internal/telemetry"
	"github.com/smallyu/go-curves/pkg/signature"
)

// Common errors
var (
	ErrInvalidPrivateKey = errors.New("bls: invalid private key")
	ErrInvalidPublicKey  = errors.New("bls: invalid public key")
	ErrInvalidSignature  = errors.New("bls: invalid signature")
)

// Ciphersuite tags of the basic scheme.
const (
	LongDST  = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"
	ShortDST = "BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"
)

// PrivateKeySize is the big-endian encoding width of a private key.
const PrivateKeySize = 32

// Config tunes a Scheme.
type Config struct {
	// DST overrides the ciphersuite tag.
	DST []byte
	// CacheTTL bounds how long decoded public keys stay cached. Zero
	// disables the cache.
	CacheTTL time.Duration
	// CacheSize caps the number of cached public keys.
	CacheSize int
}

// DefaultConfig caches up to 1024 public keys for ten minutes.
func DefaultConfig() Config {
	return Config{CacheTTL: 10 * time.Minute, CacheSize: 1024}
}

type group[T any] struct {
	curve  *weierstrass.Curve[T]
	hasher *hashtocurve.Hasher[T]
	encode func(*weierstrass.Point[T], bool) ([]byte, error)
	decode func([]byte) (*weierstrass.Point[T], error)
}

var (
	g1 = group[bls12381.Fp]{bls12381.G1, bls12381.G1Hasher, bls12381.G1ToBytes, bls12381.G1FromBytes}
	g2 = group[bls12381.Fp2]{bls12381.G2, bls12381.G2Hasher, bls12381.G2ToBytes, bls12381.G2FromBytes}
)

// pairsFunc arranges e(-pk_j, H(m_j)) for every j and e(G, σ) into
// pairing inputs.
type pairsFunc[P, S any] func(pks []*weierstrass.Point[P], hs []*weierstrass.Point[S], sig *weierstrass.Point[S]) []bls12381.Pair

// Scheme is BLS with public keys in the group of P and signatures in the
// group of S.
type Scheme[P, S any] struct {
	name  string
	dst   []byte
	pk    group[P]
	sig   group[S]
	pairs pairsFunc[P, S]
	cfg   Config
	keys  *cache.Cache
	log   *log.Entry
}

func newScheme[P, S any](name, dst string, pk group[P], sig group[S], pairs pairsFunc[P, S], cfg Config) *Scheme[P, S] {
	s := &Scheme[P, S]{
		name:  name,
		dst:   []byte(dst),
		pk:    pk,
		sig:   sig,
		pairs: pairs,
		cfg:   cfg,
		log:   log.WithField("scheme", name),
	}
	if cfg.DST != nil {
		s.dst = cfg.DST
	}
	if cfg.CacheTTL > 0 {
		s.keys = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

func longPairs(pks []*bls12381.G1Point, hs []*bls12381.G2Point, sig *bls12381.G2Point) []bls12381.Pair {
	out := make([]bls12381.Pair, 0, len(pks)+1)
	for j := range pks {
		out = append(out, bls12381.Pair{G1: pks[j].Negate(), G2: hs[j]})
	}
	return append(out, bls12381.Pair{G1: bls12381.G1.Generator(), G2: sig})
}

// shortPairs negates the G1 side so the G2 public keys keep their cached
// line precomputes.
func shortPairs(pks []*bls12381.G2Point, hs []*bls12381.G1Point, sig *bls12381.G1Point) []bls12381.Pair {
	out := make([]bls12381.Pair, 0, len(pks)+1)
	for j := range pks {
		out = append(out, bls12381.Pair{G1: hs[j].Negate(), G2: pks[j]})
	}
	return append(out, bls12381.Pair{G1: sig, G2: bls12381.G2.Generator()})
}

// NewLong returns the scheme with public keys in G1 and signatures in G2.
func NewLong(cfg Config) *Scheme[bls12381.Fp, bls12381.Fp2] {
	return newScheme("bls-long", LongDST, g1, g2, longPairs, cfg)
}

// NewShort returns the scheme with public keys in G2 and signatures in G1.
func NewShort(cfg Config) *Scheme[bls12381.Fp2, bls12381.Fp] {
	return newScheme("bls-short", ShortDST, g2, g1, shortPairs, cfg)
}

// Registered instances with DefaultConfig.
var (
	Long  = NewLong(DefaultConfig())
	Short = NewShort(DefaultConfig())
)

func init() {
	signature.MustRegister(Long)
	signature.MustRegister(Short)
}

func scalars() *field.Prime { return bls12381.G1.Scalars() }

// Name returns the registry name.
func (s *Scheme[P, S]) Name() string { return s.name }

// DST returns the ciphersuite tag used for hashing messages.
func (s *Scheme[P, S]) DST() []byte { return s.dst }

// PublicKeySize is the compressed public key length.
func (s *Scheme[P, S]) PublicKeySize() int { return s.pk.curve.Field().ByteLen() }

// SignatureSize is the compressed signature length.
func (s *Scheme[P, S]) SignatureSize() int { return s.sig.curve.Field().ByteLen() }

func parsePrivateKey(priv []byte) (*big.Int, error) {
	if len(priv) != PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", PrivateKeySize, len(priv))
	}
	d := new(big.Int).SetBytes(priv)
	if !scalars().IsValidNot0(d) {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "out of range")
	}
	return d, nil
}

// GenerateKey returns a private key derived from fresh randomness with
// KeyGen.
func (s *Scheme[P, S]) GenerateKey() ([]byte, error) {
	ikm, err := randomIKM()
	if err != nil {
		return nil, err
	}
	return KeyGen(ikm, nil)
}

// PublicKey returns sk·G in compressed form.
func (s *Scheme[P, S]) PublicKey(priv []byte) ([]byte, error) {
	d, err := parsePrivateKey(priv)
	if err != nil {
		return nil, err
	}
	p, err := s.pk.curve.Generator().Multiply(d)
	if err != nil {
		return nil, err
	}
	return s.pk.encode(p, true)
}

// HashMessage maps msg into the signature group.
func (s *Scheme[P, S]) HashMessage(msg []byte) (*weierstrass.Point[S], error) {
	return s.sig.hasher.HashToCurve(msg, s.dst)
}

// Sign returns sk·H(msg) in compressed form.
func (s *Scheme[P, S]) Sign(msg, priv []byte) ([]byte, error) {
	d, err := parsePrivateKey(priv)
	if err != nil {
		return nil, err
	}
	h, err := s.HashMessage(msg)
	if err != nil {
		return nil, err
	}
	sig, err := h.Multiply(d)
	if err != nil {
		return nil, err
	}
	return s.sig.encode(sig, true)
}

// decodePublicKey decodes and validates pub, caching the resulting point
// so repeated verifications share its decoding and pairing precomputes.
func (s *Scheme[P, S]) decodePublicKey(pub []byte) (*weierstrass.Point[P], error) {
	key := string(pub)
	if s.keys != nil {
		if v, ok := s.keys.Get(key); ok {
			telemetry.ObserveCache(true)
			return v.(*weierstrass.Point[P]), nil
		}
		telemetry.ObserveCache(false)
	}
	p, err := s.pk.decode(pub)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	if p.IsZero() {
		return nil, errors.Wrap(ErrInvalidPublicKey, "identity")
	}
	if s.keys != nil && (s.cfg.CacheSize <= 0 || s.keys.ItemCount() < s.cfg.CacheSize) {
		s.keys.SetDefault(key, p)
	}
	return p, nil
}

func (s *Scheme[P, S]) decodeSignature(sig []byte) (*weierstrass.Point[S], error) {
	p, err := s.sig.decode(sig)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return p, nil
}

// check evaluates the pairing product and compares it with one.
func (s *Scheme[P, S]) check(pks []*weierstrass.Point[P], hs []*weierstrass.Point[S], sig *weierstrass.Point[S]) bool {
	f, err := bls12381.PairingBatch(s.pairs(pks, hs, sig), true)
	if err != nil {
		s.log.WithError(err).Debug("pairing rejected input")
		return false
	}
	return bls12381.Fields.IsOne(f)
}

// Verify checks e(-pk, H(msg))·e(G, sig) == 1. Malformed input yields
// false.
func (s *Scheme[P, S]) Verify(sig, msg, pub []byte) bool {
	return signature.GuardVerify(s.name, func() bool { return s.verify(sig, msg, pub) })
}

func (s *Scheme[P, S]) verify(sig, msg, pub []byte) bool {
	pk, err := s.decodePublicKey(pub)
	if err != nil {
		s.log.WithError(err).Debug("public key rejected")
		return false
	}
	sp, err := s.decodeSignature(sig)
	if err != nil {
		s.log.WithError(err).Debug("signature rejected")
		return false
	}
	h, err := s.HashMessage(msg)
	if err != nil {
		return false
	}
	return s.check([]*weierstrass.Point[P]{pk}, []*weierstrass.Point[S]{h}, sp)
}

func aggregate[T any](g group[T], items [][]byte, what string) ([]byte, error) {
	if len(items) == 0 {
		return nil, errors.Wrapf(signature.ErrEmptyBatch, "aggregate %s", what)
	}
	acc := g.curve.Zero()
	for i, b := range items {
		p, err := g.decode(b)
		if err != nil {
			return nil, signature.NewIndexedError(i, "decode "+what, err)
		}
		acc = acc.Add(p)
	}
	return g.encode(acc, true)
}

// AggregatePublicKeys sums public keys.
func (s *Scheme[P, S]) AggregatePublicKeys(pubs [][]byte) ([]byte, error) {
	return aggregate(s.pk, pubs, "public key")
}

// AggregateSignatures sums signatures.
func (s *Scheme[P, S]) AggregateSignatures(sigs [][]byte) ([]byte, error) {
	return aggregate(s.sig, sigs, "signature")
}

// VerifyAggregate checks an aggregate of signatures over one message.
func (s *Scheme[P, S]) VerifyAggregate(sig, msg []byte, pubs [][]byte) bool {
	return signature.GuardVerify(s.name, func() bool {
		agg, err := s.AggregatePublicKeys(pubs)
		if err != nil {
			s.log.WithError(err).Debug("aggregate public key rejected")
			return false
		}
		return s.verify(sig, msg, agg)
	})
}

// VerifyBatch checks an aggregated signature over (msgs[i], pubs[i]).
// Public keys signing the same message are summed first so each distinct
// message costs one Miller loop. Messages are hashed in parallel.
func (s *Scheme[P, S]) VerifyBatch(sig []byte, msgs, pubs [][]byte) bool {
	return signature.GuardVerify(s.name, func() bool {
		if len(msgs) == 0 || len(msgs) != len(pubs) {
			return false
		}
		sp, err := s.decodeSignature(sig)
		if err != nil {
			return false
		}

		index := make(map[string]int, len(msgs))
		var distinct [][]byte
		var keys []*weierstrass.Point[P]
		for i, m := range msgs {
			pk, err := s.decodePublicKey(pubs[i])
			if err != nil {
				s.log.WithError(signature.NewIndexedError(i, "decode public key", err)).Debug("batch rejected")
				return false
			}
			j, ok := index[string(m)]
			if !ok {
				j = len(distinct)
				index[string(m)] = j
				distinct = append(distinct, m)
				keys = append(keys, pk)
				continue
			}
			keys[j] = keys[j].Add(pk)
		}

		hashes, err := s.hashAll(distinct)
		if err != nil {
			return false
		}
		return s.check(keys, hashes, sp)
	})
}

func (s *Scheme[P, S]) hashAll(msgs [][]byte) ([]*weierstrass.Point[S], error) {
	out := make([]*weierstrass.Point[S], len(msgs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range msgs {
		i, m := i, m
		g.Go(func() error {
			h, err := s.HashMessage(m)
			if err != nil {
				return signature.NewIndexedError(i, "hash message", err)
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
