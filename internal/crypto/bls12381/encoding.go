package bls12381

import (
	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

// Flag bits of the first byte of a ZCash encoding.
const (
	flagCompressed = 0x80
	flagInfinity   = 0x40
	flagSort       = 0x20
	flagMask       = flagCompressed | flagInfinity | flagSort
)

// Encoded sizes.
const (
	G1CompressedSize   = 48
	G1UncompressedSize = 96
	G2CompressedSize   = 96
	G2UncompressedSize = 192
)

// coordinates describes how one group writes its coordinates.
type coordinates[T any] struct {
	size    int
	encode  func(T) []byte
	decode  func([]byte) (T, error)
	largest func(T) bool
}

var g1Coords = coordinates[Fp]{
	size:    48,
	encode:  fpBase.Encode,
	decode:  fpBase.Decode,
	largest: fpBase.LexicographicallyLargest,
}

// G2 coordinates are written c1 || c0.
var g2Coords = coordinates[Fp2]{
	size: 96,
	encode: func(a Fp2) []byte {
		return append(fpBase.Encode(a.C1), fpBase.Encode(a.C0)...)
	},
	decode: func(b []byte) (Fp2, error) {
		c1, err := fpBase.Decode(b[:48])
		if err != nil {
			return Fp2{}, err
		}
		c0, err := fpBase.Decode(b[48:])
		if err != nil {
			return Fp2{}, err
		}
		return Fp2{C0: c0, C1: c1}, nil
	},
	largest: func(a Fp2) bool {
		if fpBase.IsZero(a.C1) {
			return fpBase.LexicographicallyLargest(a.C0)
		}
		return fpBase.LexicographicallyLargest(a.C1)
	},
}

func encodePoint[T any](cc coordinates[T], p *weierstrass.Point[T], compressed bool) ([]byte, error) {
	if err := p.AssertValidity(); err != nil {
		return nil, err
	}
	n := cc.size
	if !compressed {
		n *= 2
	}
	out := make([]byte, n)
	if p.IsZero() {
		out[0] = flagInfinity
		if compressed {
			out[0] |= flagCompressed
		}
		return out, nil
	}
	x, y := p.ToAffine()
	copy(out, cc.encode(x))
	if !compressed {
		copy(out[cc.size:], cc.encode(y))
		return out, nil
	}
	out[0] |= flagCompressed
	if cc.largest(y) {
		out[0] |= flagSort
	}
	return out, nil
}

func decodePoint[T any](c *weierstrass.Curve[T], cc coordinates[T], b []byte) (*weierstrass.Point[T], error) {
	if len(b) != cc.size && len(b) != 2*cc.size {
		return nil, errors.Wrapf(ErrInvalidEncoding, "expected %d or %d bytes, got %d", cc.size, 2*cc.size, len(b))
	}
	flags := b[0] & flagMask
	compressed := flags&flagCompressed != 0
	infinity := flags&flagInfinity != 0
	sort := flags&flagSort != 0
	if compressed != (len(b) == cc.size) {
		return nil, errors.Wrap(ErrInvalidEncoding, "compression flag does not match length")
	}
	body := append([]byte{}, b...)
	body[0] &^= flagMask

	if infinity {
		if sort {
			return nil, errors.Wrap(ErrInvalidEncoding, "sort flag set on infinity")
		}
		for _, v := range body {
			if v != 0 {
				return nil, errors.Wrap(ErrInvalidEncoding, "non-zero infinity encoding")
			}
		}
		return c.Zero(), nil
	}

	f := c.Field()
	x, err := cc.decode(body[:cc.size])
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
	}
	var y T
	if compressed {
		rhs := f.Add(f.Mul(f.Sqr(x), x), c.B())
		root := f.Sqrt(rhs)
		if !root.IsValid {
			return nil, errors.Wrap(weierstrass.ErrNotOnCurve, "no square root for x")
		}
		y = root.Value
		if cc.largest(y) != sort {
			y = f.Neg(y)
		}
	} else {
		if sort {
			return nil, errors.Wrap(ErrInvalidEncoding, "sort flag set on uncompressed point")
		}
		if y, err = cc.decode(body[cc.size:]); err != nil {
			return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
		}
	}
	return c.FromAffine(x, y)
}

// G1ToBytes writes p in the ZCash format: 48 bytes compressed or 96
// uncompressed.
func G1ToBytes(p *G1Point, compressed bool) ([]byte, error) {
	return encodePoint(g1Coords, p, compressed)
}

// G1FromBytes decodes either ZCash form and checks subgroup membership.
func G1FromBytes(b []byte) (*G1Point, error) {
	return decodePoint(G1, g1Coords, b)
}

// G2ToBytes writes p in the ZCash format: 96 bytes compressed or 192
// uncompressed.
func G2ToBytes(p *G2Point, compressed bool) ([]byte, error) {
	return encodePoint(g2Coords, p, compressed)
}

// G2FromBytes decodes either ZCash form and checks subgroup membership.
func G2FromBytes(b []byte) (*G2Point, error) {
	return decodePoint(G2, g2Coords, b)
}
