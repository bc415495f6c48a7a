package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/pkg/errors"
)

var _ Field[fp.Element] = BLS12381{}

// BLS12381 is the 381-bit base field of BLS12-381 backed by gnark-crypto's
// Montgomery-form fp.Element. Encodings are 48 bytes big-endian.
type BLS12381 struct{}

func (BLS12381) Order() *big.Int { return fp.Modulus() }
func (BLS12381) BitLen() int     { return fp.Bits }
func (BLS12381) ByteLen() int    { return fp.Bytes }

func (BLS12381) Zero() fp.Element { return fp.Element{} }
func (BLS12381) One() fp.Element  { return fp.One() }

func (BLS12381) FromUint64(v uint64) fp.Element {
	var r fp.Element
	r.SetUint64(v)
	return r
}

func (BLS12381) FromBig(v *big.Int) fp.Element {
	var r fp.Element
	r.SetBigInt(v)
	return r
}

func (BLS12381) Add(a, b fp.Element) fp.Element {
	var r fp.Element
	r.Add(&a, &b)
	return r
}

func (BLS12381) Sub(a, b fp.Element) fp.Element {
	var r fp.Element
	r.Sub(&a, &b)
	return r
}

func (BLS12381) Neg(a fp.Element) fp.Element {
	var r fp.Element
	r.Neg(&a)
	return r
}

func (BLS12381) Mul(a, b fp.Element) fp.Element {
	var r fp.Element
	r.Mul(&a, &b)
	return r
}

func (BLS12381) Sqr(a fp.Element) fp.Element {
	var r fp.Element
	r.Square(&a)
	return r
}

func (BLS12381) Inv(a fp.Element) fp.Element {
	var r fp.Element
	r.Inverse(&a)
	return r
}

func (f BLS12381) Div(a, b fp.Element) fp.Element {
	return f.Mul(a, f.Inv(b))
}

func (BLS12381) Pow(a fp.Element, e *big.Int) fp.Element {
	var r fp.Element
	r.Exp(a, e)
	return r
}

func (BLS12381) Sqrt(a fp.Element) Result[fp.Element] {
	var r fp.Element
	if r.Sqrt(&a) == nil {
		return Result[fp.Element]{}
	}
	return Result[fp.Element]{Value: r, IsValid: true}
}

func (BLS12381) Equal(a, b fp.Element) bool { return a.Equal(&b) }
func (BLS12381) IsZero(a fp.Element) bool   { return a.IsZero() }

func (BLS12381) IsOdd(a fp.Element) bool {
	b := a.Bytes()
	return b[fp.Bytes-1]&1 == 1
}

func (BLS12381) CMov(a, b fp.Element, c bool) fp.Element {
	cond := 0
	if c {
		cond = 1
	}
	var r fp.Element
	r.Select(cond, &a, &b)
	return r
}

func (BLS12381) Encode(a fp.Element) []byte {
	b := a.Bytes()
	return b[:]
}

func (BLS12381) Decode(b []byte) (fp.Element, error) {
	var r fp.Element
	if len(b) != fp.Bytes {
		return r, errors.Wrapf(ErrInvalidLength, "expected %d bytes, got %d", fp.Bytes, len(b))
	}
	if err := r.SetBytesCanonical(b); err != nil {
		return fp.Element{}, ErrNotCanonical
	}
	return r, nil
}

// LexicographicallyLargest reports whether a > (p-1)/2, the sign
// convention of the ZCash point encoding.
func (BLS12381) LexicographicallyLargest(a fp.Element) bool {
	return a.LexicographicallyLargest()
}
