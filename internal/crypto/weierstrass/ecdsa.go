package weierstrass

import (
	"crypto/hmac"
	"crypto/rand"
	"hash"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ECDSA errors
var (
	ErrInvalidPrivateKey = errors.New("ecdsa: invalid private key")
	ErrInvalidSignature  = errors.New("ecdsa: invalid signature")
	ErrInvalidRecovery   = errors.New("ecdsa: invalid recovery id")
	ErrDRBGExhausted     = errors.New("ecdsa: drbg tried 1000 values")
)

// SignatureFormat selects a signature encoding.
type SignatureFormat int

const (
	// FormatCompact is r || s, each padded to the scalar length.
	FormatCompact SignatureFormat = iota
	// FormatDER is the ASN.1 SEQUENCE of two INTEGERs.
	FormatDER
	// FormatRecovered is recovery || r || s.
	FormatRecovered
)

// Signature is an ECDSA signature. Recovery is -1 when unknown.
type Signature struct {
	R, S     *big.Int
	Recovery int
}

// ECDSA signs and verifies over a curve with a fixed hash function.
type ECDSA[T any] struct {
	curve *Curve[T]
	hash  func() hash.Hash
	rand  io.Reader
	log   *logrus.Entry
}

// NewECDSA returns the scheme over c using h for prehashing and for the
// RFC 6979 HMAC-DRBG.
func NewECDSA[T any](c *Curve[T], h func() hash.Hash) *ECDSA[T] {
	return &ECDSA[T]{curve: c, hash: h, rand: rand.Reader, log: log.WithField("scheme", "ecdsa-"+c.Name())}
}

// WithRand replaces the randomness source used for key generation and
// extra entropy.
func (e *ECDSA[T]) WithRand(r io.Reader) *ECDSA[T] {
	cp := *e
	cp.rand = r
	return &cp
}

// Curve returns the underlying curve.
func (e *ECDSA[T]) Curve() *Curve[T] { return e.curve }

type options struct {
	lowS          bool
	prehash       bool
	extraEntropy  []byte
	randomEntropy bool
	format        *SignatureFormat
}

// Option tunes Sign and Verify.
type Option func(*options)

// WithLowS sets whether signatures are normalized to s <= n/2 and
// whether verification rejects high s. It defaults to true.
func WithLowS(v bool) Option { return func(o *options) { o.lowS = v } }

// WithPrehash hashes the message before use. It defaults to false, so
// messages are expected to be digests already.
func WithPrehash(v bool) Option { return func(o *options) { o.prehash = v } }

// WithExtraEntropy mixes e into the nonce derivation (RFC 6979 3.6).
func WithExtraEntropy(e []byte) Option { return func(o *options) { o.extraEntropy = e } }

// WithRandomEntropy mixes fresh random bytes into the nonce derivation.
func WithRandomEntropy() Option { return func(o *options) { o.randomEntropy = true } }

// WithFormat restricts Verify to one signature encoding. By default
// compact and DER are both tried.
func WithFormat(f SignatureFormat) Option { return func(o *options) { o.format = &f } }

func buildOptions(opts []Option) options {
	o := options{lowS: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (e *ECDSA[T]) scalarLen() int { return e.curve.fn.ByteLen() }

// bits2int keeps the leftmost bits(n) bits of b.
func (e *ECDSA[T]) bits2int(b []byte) *big.Int {
	num := new(big.Int).SetBytes(b)
	if delta := len(b)*8 - e.curve.fn.BitLen(); delta > 0 {
		num.Rsh(num, uint(delta))
	}
	return num
}

func (e *ECDSA[T]) bits2intModN(b []byte) *big.Int {
	return e.curve.fn.FromBig(e.bits2int(b))
}

func (e *ECDSA[T]) message(msg []byte, o options) []byte {
	if !o.prehash {
		return msg
	}
	h := e.hash()
	h.Write(msg)
	return h.Sum(nil)
}

func (e *ECDSA[T]) isHighS(s *big.Int) bool {
	return s.Cmp(new(big.Int).Rsh(e.curve.cfg.N, 1)) > 0
}

// PrivateKeyScalar parses a big-endian private key in [1, n).
func (e *ECDSA[T]) PrivateKeyScalar(priv []byte) (*big.Int, error) {
	if len(priv) != e.scalarLen() {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", e.scalarLen(), len(priv))
	}
	d := new(big.Int).SetBytes(priv)
	if !e.curve.fn.IsValidNot0(d) {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "out of range")
	}
	return d, nil
}

// RandomPrivateKey reduces a seed of len(n) + len(n)/2 bytes into [1, n)
// so the bias is negligible.
func (e *ECDSA[T]) RandomPrivateKey() ([]byte, error) {
	l := e.scalarLen()
	seed := make([]byte, l+(l+1)/2)
	if _, err := io.ReadFull(e.rand, seed); err != nil {
		return nil, errors.Wrap(err, "ecdsa: reading randomness")
	}
	return e.MapSeedToPrivateKey(seed)
}

// MapSeedToPrivateKey maps a uniformly random seed to a private key as
// seed mod (n-1) + 1.
func (e *ECDSA[T]) MapSeedToPrivateKey(seed []byte) ([]byte, error) {
	l := e.scalarLen()
	if len(seed) < 16 || len(seed) < l+(l+1)/2 || len(seed) > 1024 {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "seed of %d bytes", len(seed))
	}
	nm1 := new(big.Int).Sub(e.curve.cfg.N, big.NewInt(1))
	d := new(big.Int).SetBytes(seed)
	d.Mod(d, nm1).Add(d, big.NewInt(1))
	return e.curve.fn.Encode(d), nil
}

// PublicKey returns d·G in SEC1 form.
func (e *ECDSA[T]) PublicKey(priv []byte, compressed bool) ([]byte, error) {
	d, err := e.PrivateKeyScalar(priv)
	if err != nil {
		return nil, err
	}
	q, err := e.curve.base.Multiply(d)
	if err != nil {
		return nil, err
	}
	return q.ToBytes(compressed)
}

// SharedSecret returns d·Q in SEC1 form (ECDH). The peer key must be a
// valid public key.
func (e *ECDSA[T]) SharedSecret(priv, peer []byte, compressed bool) ([]byte, error) {
	d, err := e.PrivateKeyScalar(priv)
	if err != nil {
		return nil, err
	}
	q, err := e.curve.FromBytes(peer)
	if err != nil {
		return nil, errors.Wrap(err, "ecdsa: peer public key")
	}
	s, err := q.Multiply(d)
	if err != nil {
		return nil, err
	}
	return s.ToBytes(compressed)
}

// Sign produces a deterministic RFC 6979 signature over msg with the
// recovery id attached. Extra entropy turns it into a hedged signature.
func (e *ECDSA[T]) Sign(msg, priv []byte, opts ...Option) (*Signature, error) {
	o := buildOptions(opts)
	fn := e.curve.fn
	d, err := e.PrivateKeyScalar(priv)
	if err != nil {
		return nil, err
	}
	m := e.bits2intModN(e.message(msg, o))

	// RFC 6979 3.2 step D seed: int2octets(d) || bits2octets(h1) [|| extra]
	seed := append(fn.Encode(d), fn.Encode(m)...)
	switch {
	case o.extraEntropy != nil:
		seed = append(seed, o.extraEntropy...)
	case o.randomEntropy:
		extra := make([]byte, e.scalarLen())
		if _, err := io.ReadFull(e.rand, extra); err != nil {
			return nil, errors.Wrap(err, "ecdsa: reading entropy")
		}
		seed = append(seed, extra...)
	}

	k2sig := func(kb []byte) *Signature {
		k := e.bits2int(kb)
		if !fn.IsValidNot0(k) {
			return nil
		}
		q, err := e.curve.base.Multiply(k)
		if err != nil {
			return nil
		}
		qx, qy := q.ToAffine()
		x := new(big.Int).SetBytes(e.curve.f.Encode(qx))
		r := fn.FromBig(x)
		if r.Sign() == 0 {
			return nil
		}
		// s = k⁻¹·(m + r·d) mod n
		s := fn.Mul(fn.Inv(k), fn.Add(m, fn.Mul(r, d)))
		if s.Sign() == 0 {
			return nil
		}
		recovery := 0
		if x.Cmp(r) != 0 {
			recovery = 2
		}
		if e.curve.f.IsOdd(qy) {
			recovery |= 1
		}
		if o.lowS && e.isHighS(s) {
			s = fn.Neg(s)
			recovery ^= 1
		}
		return &Signature{R: r, S: s, Recovery: recovery}
	}

	sig, err := newHmacDRBG(e.hash, e.scalarLen()).generate(seed, k2sig)
	if err != nil {
		return nil, err
	}
	e.log.Debug("signed")
	return sig, nil
}

// Verify reports whether sig is a valid signature of msg under the SEC1
// public key pub. Any malformed input yields false.
func (e *ECDSA[T]) Verify(sig, msg, pub []byte, opts ...Option) bool {
	o := buildOptions(opts)
	s, err := e.parseForVerify(sig, o)
	if err != nil {
		e.log.WithError(err).Debug("signature rejected")
		return false
	}
	return e.VerifySignature(s, msg, pub, opts...)
}

func (e *ECDSA[T]) parseForVerify(sig []byte, o options) (*Signature, error) {
	if o.format != nil {
		return e.ParseSignature(sig, *o.format)
	}
	if len(sig) == 2*e.scalarLen() {
		if s, err := e.ParseSignature(sig, FormatCompact); err == nil {
			return s, nil
		}
	}
	return e.ParseSignature(sig, FormatDER)
}

// VerifySignature is Verify for an already parsed signature.
func (e *ECDSA[T]) VerifySignature(sig *Signature, msg, pub []byte, opts ...Option) bool {
	o := buildOptions(opts)
	fn := e.curve.fn
	if sig == nil || !fn.IsValidNot0(sig.R) || !fn.IsValidNot0(sig.S) {
		return false
	}
	p, err := e.curve.FromBytes(pub)
	if err != nil {
		e.log.WithError(err).Debug("public key rejected")
		return false
	}
	if o.lowS && e.isHighS(sig.S) {
		return false
	}
	h := e.bits2intModN(e.message(msg, o))
	is := fn.Inv(sig.S)
	u1 := fn.Mul(h, is)
	u2 := fn.Mul(sig.R, is)
	// R = u1·G + u2·P
	r, ok, err := e.curve.base.MultiplyAndAddUnsafe(p, u1, u2)
	if err != nil || !ok {
		return false
	}
	rx, _ := r.ToAffine()
	v := fn.FromBig(new(big.Int).SetBytes(e.curve.f.Encode(rx)))
	return v.Cmp(sig.R) == 0
}

// RecoverPublicKey returns the SEC1 public key that produced sig over
// msg, using the recovery id.
func (e *ECDSA[T]) RecoverPublicKey(sig *Signature, msg []byte, compressed bool, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	c, fn := e.curve, e.curve.fn
	if sig == nil || !fn.IsValidNot0(sig.R) || !fn.IsValidNot0(sig.S) {
		return nil, ErrInvalidSignature
	}
	rec := sig.Recovery
	if rec < 0 || rec > 3 {
		return nil, errors.Wrapf(ErrInvalidRecovery, "%d", rec)
	}
	p := c.f.Order()
	if new(big.Int).Lsh(c.cfg.N, 1).Cmp(p) < 0 && rec > 1 {
		return nil, errors.Wrap(ErrInvalidRecovery, "ambiguous for curves with a cofactor")
	}
	radj := new(big.Int).Set(sig.R)
	if rec >= 2 {
		radj.Add(radj, c.cfg.N)
	}
	if radj.Cmp(p) >= 0 {
		return nil, errors.Wrap(ErrInvalidRecovery, "r + n exceeds the field")
	}
	prefix := byte(prefixEven)
	if rec&1 == 1 {
		prefix = prefixOdd
	}
	xb := make([]byte, c.f.ByteLen())
	radj.FillBytes(xb)
	R, err := c.FromBytes(append([]byte{prefix}, xb...))
	if err != nil {
		return nil, errors.Wrap(err, "ecdsa: recovering R")
	}
	ir := fn.Inv(fn.FromBig(radj))
	h := e.bits2intModN(e.message(msg, o))
	u1 := fn.Mul(fn.Neg(h), ir)
	u2 := fn.Mul(sig.S, ir)
	// Q = u2·R - h·r⁻¹·G
	q, ok, err := c.base.MultiplyAndAddUnsafe(R, u1, u2)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrInvalidSignature, "recovered the identity")
	}
	return q.ToBytes(compressed)
}

// HasHighS reports whether s > n/2.
func (e *ECDSA[T]) HasHighS(sig *Signature) bool { return e.isHighS(sig.S) }

// NormalizeS returns the signature with s replaced by n - s when high.
func (e *ECDSA[T]) NormalizeS(sig *Signature) *Signature {
	if !e.isHighS(sig.S) {
		return sig
	}
	rec := sig.Recovery
	if rec >= 0 {
		rec ^= 1
	}
	return &Signature{R: sig.R, S: e.curve.fn.Neg(sig.S), Recovery: rec}
}

// EncodeSignature serializes sig in the requested format.
func (e *ECDSA[T]) EncodeSignature(sig *Signature, format SignatureFormat) ([]byte, error) {
	fn := e.curve.fn
	switch format {
	case FormatCompact:
		return append(fn.Encode(sig.R), fn.Encode(sig.S)...), nil
	case FormatDER:
		return encodeDER(sig.R, sig.S), nil
	case FormatRecovered:
		if sig.Recovery < 0 || sig.Recovery > 3 {
			return nil, ErrInvalidRecovery
		}
		out := []byte{byte(sig.Recovery)}
		out = append(out, fn.Encode(sig.R)...)
		return append(out, fn.Encode(sig.S)...), nil
	}
	return nil, errors.Errorf("ecdsa: unknown signature format %d", format)
}

// ParseSignature decodes sig and checks 1 <= r, s < n.
func (e *ECDSA[T]) ParseSignature(sig []byte, format SignatureFormat) (*Signature, error) {
	l := e.scalarLen()
	out := &Signature{Recovery: -1}
	switch format {
	case FormatCompact:
		if len(sig) != 2*l {
			return nil, errors.Wrapf(ErrInvalidSignature, "compact signature of %d bytes", len(sig))
		}
		out.R = new(big.Int).SetBytes(sig[:l])
		out.S = new(big.Int).SetBytes(sig[l:])
	case FormatDER:
		r, s, err := decodeDER(sig)
		if err != nil {
			return nil, err
		}
		out.R, out.S = r, s
	case FormatRecovered:
		if len(sig) != 2*l+1 {
			return nil, errors.Wrapf(ErrInvalidSignature, "recovered signature of %d bytes", len(sig))
		}
		if sig[0] > 3 {
			return nil, errors.Wrapf(ErrInvalidRecovery, "%d", sig[0])
		}
		out.Recovery = int(sig[0])
		out.R = new(big.Int).SetBytes(sig[1 : 1+l])
		out.S = new(big.Int).SetBytes(sig[1+l:])
	default:
		return nil, errors.Errorf("ecdsa: unknown signature format %d", format)
	}
	if !e.curve.fn.IsValidNot0(out.R) || !e.curve.fn.IsValidNot0(out.S) {
		return nil, errors.Wrap(ErrInvalidSignature, "r or s out of range")
	}
	return out, nil
}

// hmacDRBG is the minimal HMAC-DRBG of NIST SP 800-90A as profiled by
// RFC 6979 section 3.2.
type hmacDRBG struct {
	hash  func() hash.Hash
	qLen  int
	k, v  []byte
	count int
}

func newHmacDRBG(h func() hash.Hash, qLen int) *hmacDRBG {
	return &hmacDRBG{hash: h, qLen: qLen}
}

func (d *hmacDRBG) mac(parts ...[]byte) []byte {
	m := hmac.New(d.hash, d.k)
	m.Write(d.v)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

func (d *hmacDRBG) reset() {
	size := d.hash().Size()
	d.v = make([]byte, size)
	for i := range d.v {
		d.v[i] = 0x01
	}
	d.k = make([]byte, size)
	d.count = 0
}

// reseed is steps D to G: K = HMAC_K(V || 0x00 || seed), V = HMAC_K(V),
// and the same again with 0x01 when seed is non-empty.
func (d *hmacDRBG) reseed(seed []byte) {
	d.k = d.mac([]byte{0x00}, seed)
	d.v = d.mac()
	if len(seed) == 0 {
		return
	}
	d.k = d.mac([]byte{0x01}, seed)
	d.v = d.mac()
}

func (d *hmacDRBG) gen() ([]byte, error) {
	if d.count >= 1000 {
		return nil, ErrDRBGExhausted
	}
	d.count++
	out := make([]byte, 0, d.qLen)
	for len(out) < d.qLen {
		d.v = d.mac()
		out = append(out, d.v...)
	}
	return out, nil
}

// generate runs step H until pred accepts a candidate.
func (d *hmacDRBG) generate(seed []byte, pred func([]byte) *Signature) (*Signature, error) {
	d.reset()
	defer d.reset()
	d.reseed(seed)
	for {
		b, err := d.gen()
		if err != nil {
			return nil, err
		}
		if sig := pred(b); sig != nil {
			return sig, nil
		}
		d.reseed(nil)
	}
}
