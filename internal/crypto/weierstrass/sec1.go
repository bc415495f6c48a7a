package weierstrass

import (
	"github.com/pkg/errors"
)

// SEC1 point prefixes.
const (
	prefixInfinity     = 0x00
	prefixEven         = 0x02
	prefixOdd          = 0x03
	prefixUncompressed = 0x04
)

// CompressedLen is the length of a compressed SEC1 encoding.
func (c *Curve[T]) CompressedLen() int { return 1 + c.f.ByteLen() }

// UncompressedLen is the length of an uncompressed SEC1 encoding.
func (c *Curve[T]) UncompressedLen() int { return 1 + 2*c.f.ByteLen() }

// ToBytes encodes p in SEC1 form: 0x02/0x03 || x when compressed and
// 0x04 || x || y otherwise. The point is validated first.
func (p *Point[T]) ToBytes(compressed bool) ([]byte, error) {
	if err := p.AssertValidity(); err != nil {
		return nil, err
	}
	if p.IsZero() {
		return []byte{prefixInfinity}, nil
	}
	f := p.c.f
	x, y := p.ToAffine()
	if compressed {
		prefix := byte(prefixEven)
		if f.IsOdd(y) {
			prefix = prefixOdd
		}
		return append([]byte{prefix}, f.Encode(x)...), nil
	}
	out := make([]byte, 0, p.c.UncompressedLen())
	out = append(out, prefixUncompressed)
	out = append(out, f.Encode(x)...)
	return append(out, f.Encode(y)...), nil
}

// FromBytes decodes a SEC1 point and asserts it is valid.
func (c *Curve[T]) FromBytes(b []byte) (*Point[T], error) {
	p, err := c.decodeSEC1(b)
	if err != nil {
		return nil, err
	}
	if err := p.AssertValidity(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Curve[T]) decodeSEC1(b []byte) (*Point[T], error) {
	f := c.f
	if len(b) == 0 {
		return nil, errors.Wrap(ErrInvalidEncoding, "empty input")
	}
	head, tail := b[0], b[1:]
	switch {
	case len(b) == 1 && head == prefixInfinity && c.cfg.AllowInfinity:
		return c.zero, nil

	case len(b) == c.CompressedLen() && (head == prefixEven || head == prefixOdd):
		x, err := f.Decode(tail)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
		}
		r := f.Sqrt(c.rhs(x))
		if !r.IsValid {
			return nil, errors.Wrap(ErrNotOnCurve, "x has no matching y")
		}
		y := r.Value
		if f.IsOdd(y) != (head&1 == 1) {
			y = f.Neg(y)
		}
		return c.fromAffine(x, y), nil

	case len(b) == c.UncompressedLen() && head == prefixUncompressed:
		n := f.ByteLen()
		x, err := f.Decode(tail[:n])
		if err != nil {
			return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
		}
		y, err := f.Decode(tail[n:])
		if err != nil {
			return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
		}
		if !c.isValidXY(x, y) {
			return nil, ErrNotOnCurve
		}
		return c.fromAffine(x, y), nil
	}
	return nil, errors.Wrapf(ErrInvalidEncoding, "got length %d, expected compressed=%d or uncompressed=%d",
		len(b), c.CompressedLen(), c.UncompressedLen())
}
