package weierstrass

import (
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ErrInvalidDER is returned for signatures that are not strict DER.
var ErrInvalidDER = errors.New("weierstrass: invalid DER signature")

// encodeDER returns SEQUENCE { INTEGER r, INTEGER s }.
func encodeDER(r, s *big.Int) []byte {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.BytesOrPanic()
}

// decodeDER parses a strict DER signature: minimal lengths, minimal and
// non-negative integers and no trailing bytes at either level.
func decodeDER(sig []byte) (*big.Int, *big.Int, error) {
	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) {
		return nil, nil, errors.Wrap(ErrInvalidDER, "malformed sequence")
	}
	if !input.Empty() {
		return nil, nil, errors.Wrap(ErrInvalidDER, "trailing bytes after sequence")
	}
	if !inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) {
		return nil, nil, errors.Wrap(ErrInvalidDER, "malformed integer")
	}
	if !inner.Empty() {
		return nil, nil, errors.Wrap(ErrInvalidDER, "trailing bytes after integers")
	}
	if r.Sign() < 0 || s.Sign() < 0 {
		return nil, nil, errors.Wrap(ErrInvalidDER, "negative integer")
	}
	return r, s, nil
}
