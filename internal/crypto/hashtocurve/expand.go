// Package hashtocurve implements hashing to elliptic curves as described in
// RFC 9380: the expand_message variants, hash_to_field, isogeny maps and a
// Hasher that ties them to a Weierstrass curve.
package hashtocurve

import (
	"hash"
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"
)

// Common errors
var (
	ErrInvalidLength  = errors.New("hashtocurve: invalid output length")
	ErrInvalidOptions = errors.New("hashtocurve: invalid options")
)

var log = logrus.WithField("pkg", "hashtocurve")

const oversizeDSTPrefix = "H2C-OVERSIZE-DST-"

// i2osp is I2OSP for lengths of one or two bytes.
func i2osp(v, n int) []byte {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func hashAll(h hash.Hash, parts ...[]byte) []byte {
	h.Reset()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// ExpandMessageXMD is expand_message_xmd of RFC 9380 section 5.3.1. DSTs
// longer than 255 bytes are first hashed as in section 5.3.3.
func ExpandMessageXMD(msg, dst []byte, lenInBytes int, newHash func() hash.Hash) ([]byte, error) {
	h := newHash()
	if len(dst) > 255 {
		log.WithField("dst_len", len(dst)).Trace("hashing oversize DST")
		dst = hashAll(h, []byte(oversizeDSTPrefix), dst)
	}
	bInBytes, rInBytes := h.Size(), h.BlockSize()
	ell := (lenInBytes + bInBytes - 1) / bInBytes
	if lenInBytes <= 0 || lenInBytes > 65535 || ell > 255 {
		return nil, errors.Wrapf(ErrInvalidLength, "expand_message_xmd: %d bytes", lenInBytes)
	}

	dstPrime := append(append([]byte{}, dst...), byte(len(dst)))
	zPad := make([]byte, rInBytes)
	b0 := hashAll(h, zPad, msg, i2osp(lenInBytes, 2), []byte{0}, dstPrime)

	out := make([]byte, 0, ell*bInBytes)
	bi := hashAll(h, b0, []byte{1}, dstPrime)
	out = append(out, bi...)
	for i := 2; i <= ell; i++ {
		x := make([]byte, bInBytes)
		for j := range x {
			x[j] = b0[j] ^ bi[j]
		}
		bi = hashAll(h, x, []byte{byte(i)}, dstPrime)
		out = append(out, bi...)
	}
	return out[:lenInBytes], nil
}

// ExpandMessageXOF is expand_message_xof of RFC 9380 section 5.3.2 with
// security parameter k bits.
func ExpandMessageXOF(msg, dst []byte, lenInBytes, k int, newXOF func() sha3.ShakeHash) ([]byte, error) {
	if len(dst) > 255 {
		log.WithField("dst_len", len(dst)).Trace("hashing oversize DST")
		x := newXOF()
		x.Write([]byte(oversizeDSTPrefix))
		x.Write(dst)
		dst = make([]byte, (2*k+7)/8)
		if _, err := x.Read(dst); err != nil {
			return nil, errors.Wrap(err, "expand_message_xof: reading XOF")
		}
	}
	if lenInBytes <= 0 || lenInBytes > 65535 {
		return nil, errors.Wrapf(ErrInvalidLength, "expand_message_xof: %d bytes", lenInBytes)
	}
	x := newXOF()
	x.Write(msg)
	x.Write(i2osp(lenInBytes, 2))
	x.Write(dst)
	x.Write([]byte{byte(len(dst))})
	out := make([]byte, lenInBytes)
	if _, err := x.Read(out); err != nil {
		return nil, errors.Wrap(err, "expand_message_xof: reading XOF")
	}
	return out, nil
}

// Expander selects the expand_message variant.
type Expander int

const (
	XMD Expander = iota
	XOF
)

// Options parameterize HashToField.
type Options struct {
	DST []byte
	// P is the field characteristic and M the extension degree.
	P *big.Int
	M int
	// K is the target security level in bits.
	K      int
	Expand Expander
	Hash   func() hash.Hash
	XOF    func() sha3.ShakeHash
}

func (o Options) validate() error {
	if o.P == nil || o.P.Cmp(big.NewInt(1)) <= 0 {
		return errors.Wrap(ErrInvalidOptions, "missing characteristic")
	}
	if o.M < 1 || o.K < 1 {
		return errors.Wrap(ErrInvalidOptions, "m and k must be positive")
	}
	switch o.Expand {
	case XMD:
		if o.Hash == nil {
			return errors.Wrap(ErrInvalidOptions, "xmd needs a hash")
		}
	case XOF:
		if o.XOF == nil {
			return errors.Wrap(ErrInvalidOptions, "xof needs an extendable-output function")
		}
	default:
		return errors.Wrapf(ErrInvalidOptions, "unknown expander %d", o.Expand)
	}
	return nil
}

// HashToField returns count elements of GF(p^m), each as m integers
// reduced modulo p (RFC 9380 section 5.2).
func HashToField(msg []byte, count int, o Options) ([][]*big.Int, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, errors.Wrap(ErrInvalidOptions, "count must be positive")
	}
	L := (o.P.BitLen() + o.K + 7) / 8
	lenInBytes := count * o.M * L

	var (
		prb []byte
		err error
	)
	if o.Expand == XMD {
		prb, err = ExpandMessageXMD(msg, o.DST, lenInBytes, o.Hash)
	} else {
		prb, err = ExpandMessageXOF(msg, o.DST, lenInBytes, o.K, o.XOF)
	}
	if err != nil {
		return nil, err
	}

	u := make([][]*big.Int, count)
	for i := range u {
		e := make([]*big.Int, o.M)
		for j := range e {
			off := L * (j + i*o.M)
			e[j] = new(big.Int).SetBytes(prb[off : off+L])
			e[j].Mod(e[j], o.P)
		}
		u[i] = e
	}
	return u, nil
}
