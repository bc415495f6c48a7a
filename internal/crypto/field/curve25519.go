package field

import (
	"bytes"
	"math/big"

	fe "filippo.io/edwards25519/field"
	"github.com/pkg/errors"
)

var _ Field[fe.Element] = Curve25519{}

// Curve25519 is GF(2^255-19) backed by filippo.io/edwards25519/field.
// Encodings are 32 bytes little-endian.
type Curve25519 struct{}

var curve25519P, _ = new(big.Int).SetString("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffed", 16)

func (Curve25519) Order() *big.Int { return new(big.Int).Set(curve25519P) }
func (Curve25519) BitLen() int     { return 255 }
func (Curve25519) ByteLen() int    { return 32 }

func (Curve25519) Zero() fe.Element { return *new(fe.Element).Zero() }
func (Curve25519) One() fe.Element  { return *new(fe.Element).One() }

func (f Curve25519) FromUint64(v uint64) fe.Element {
	return f.FromBig(new(big.Int).SetUint64(v))
}

func (Curve25519) FromBig(v *big.Int) fe.Element {
	r := new(big.Int).Mod(v, curve25519P)
	buf := make([]byte, 32)
	r.FillBytes(buf)
	reverse(buf)
	var out fe.Element
	if _, err := out.SetBytes(buf); err != nil {
		panic(err)
	}
	return out
}

func (Curve25519) Add(a, b fe.Element) fe.Element {
	return *new(fe.Element).Add(&a, &b)
}

func (Curve25519) Sub(a, b fe.Element) fe.Element {
	return *new(fe.Element).Subtract(&a, &b)
}

func (Curve25519) Neg(a fe.Element) fe.Element {
	return *new(fe.Element).Negate(&a)
}

func (Curve25519) Mul(a, b fe.Element) fe.Element {
	return *new(fe.Element).Multiply(&a, &b)
}

func (Curve25519) Sqr(a fe.Element) fe.Element {
	return *new(fe.Element).Square(&a)
}

func (Curve25519) Inv(a fe.Element) fe.Element {
	return *new(fe.Element).Invert(&a)
}

func (f Curve25519) Div(a, b fe.Element) fe.Element {
	return f.Mul(a, f.Inv(b))
}

func (f Curve25519) Pow(a fe.Element, e *big.Int) fe.Element {
	return Pow[fe.Element](f, a, e)
}

func (f Curve25519) Sqrt(a fe.Element) Result[fe.Element] {
	return f.SqrtRatio(a, f.One())
}

// SqrtRatio returns the non-negative square root of u/v in constant time.
// IsValid is false when u/v is not a square or v is zero with u non-zero.
func (Curve25519) SqrtRatio(u, v fe.Element) Result[fe.Element] {
	r, wasSquare := new(fe.Element).SqrtRatio(&u, &v)
	if wasSquare != 1 {
		return Result[fe.Element]{Value: *new(fe.Element).Zero()}
	}
	return Result[fe.Element]{Value: *r, IsValid: true}
}

func (Curve25519) Equal(a, b fe.Element) bool { return a.Equal(&b) == 1 }

func (Curve25519) IsZero(a fe.Element) bool {
	return a.Equal(new(fe.Element).Zero()) == 1
}

func (Curve25519) IsOdd(a fe.Element) bool { return a.IsNegative() == 1 }

func (Curve25519) CMov(a, b fe.Element, c bool) fe.Element {
	cond := 0
	if c {
		cond = 1
	}
	return *new(fe.Element).Select(&b, &a, cond)
}

func (Curve25519) Encode(a fe.Element) []byte { return a.Bytes() }

// Decode accepts only canonical encodings below p with the top bit clear.
func (Curve25519) Decode(b []byte) (fe.Element, error) {
	var r fe.Element
	if len(b) != 32 {
		return r, errors.Wrapf(ErrInvalidLength, "expected 32 bytes, got %d", len(b))
	}
	if _, err := r.SetBytes(b); err != nil {
		return r, errors.Wrap(ErrInvalidLength, err.Error())
	}
	if !bytes.Equal(r.Bytes(), b) {
		return fe.Element{}, ErrNotCanonical
	}
	return r, nil
}

// DecodeLoose accepts any 32-byte string, ignoring the top bit and
// reducing values in [p, 2^255).
func (Curve25519) DecodeLoose(b []byte) (fe.Element, error) {
	var r fe.Element
	if _, err := r.SetBytes(b); err != nil {
		return r, errors.Wrapf(ErrInvalidLength, "expected 32 bytes, got %d", len(b))
	}
	return r, nil
}
