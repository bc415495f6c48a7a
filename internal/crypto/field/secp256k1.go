package field

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

var (
	_ Field[*big.Int]          = (*Prime)(nil)
	_ Field[secp256k1.FieldVal] = Secp256k1{}
)

// Secp256k1 is the base field of secp256k1 backed by decred's constant
// time FieldVal. Every returned value is normalized.
type Secp256k1 struct{}

var secp256k1P = secp256k1.S256().P

func (Secp256k1) Order() *big.Int { return new(big.Int).Set(secp256k1P) }
func (Secp256k1) BitLen() int     { return 256 }
func (Secp256k1) ByteLen() int    { return 32 }

func (Secp256k1) Zero() secp256k1.FieldVal { return secp256k1.FieldVal{} }

func (Secp256k1) One() secp256k1.FieldVal {
	var v secp256k1.FieldVal
	v.SetInt(1)
	return v
}

func (f Secp256k1) FromUint64(v uint64) secp256k1.FieldVal {
	return f.FromBig(new(big.Int).SetUint64(v))
}

func (Secp256k1) FromBig(v *big.Int) secp256k1.FieldVal {
	r := new(big.Int).Mod(v, secp256k1P)
	var buf [32]byte
	r.FillBytes(buf[:])
	var out secp256k1.FieldVal
	out.SetBytes(&buf)
	return out
}

func (Secp256k1) Add(a, b secp256k1.FieldVal) secp256k1.FieldVal {
	var r secp256k1.FieldVal
	r.Add2(&a, &b).Normalize()
	return r
}

func (Secp256k1) Sub(a, b secp256k1.FieldVal) secp256k1.FieldVal {
	var r secp256k1.FieldVal
	r.NegateVal(&b, 1).Add(&a).Normalize()
	return r
}

func (Secp256k1) Neg(a secp256k1.FieldVal) secp256k1.FieldVal {
	var r secp256k1.FieldVal
	r.NegateVal(&a, 1).Normalize()
	return r
}

func (Secp256k1) Mul(a, b secp256k1.FieldVal) secp256k1.FieldVal {
	var r secp256k1.FieldVal
	r.Mul2(&a, &b).Normalize()
	return r
}

func (Secp256k1) Sqr(a secp256k1.FieldVal) secp256k1.FieldVal {
	var r secp256k1.FieldVal
	r.SquareVal(&a).Normalize()
	return r
}

func (Secp256k1) Inv(a secp256k1.FieldVal) secp256k1.FieldVal {
	r := a
	r.Inverse().Normalize()
	return r
}

func (f Secp256k1) Div(a, b secp256k1.FieldVal) secp256k1.FieldVal {
	return f.Mul(a, f.Inv(b))
}

func (f Secp256k1) Pow(a secp256k1.FieldVal, e *big.Int) secp256k1.FieldVal {
	return Pow[secp256k1.FieldVal](f, a, e)
}

func (Secp256k1) Sqrt(a secp256k1.FieldVal) Result[secp256k1.FieldVal] {
	var r secp256k1.FieldVal
	ok := r.SquareRootVal(&a)
	r.Normalize()
	if !ok {
		return Result[secp256k1.FieldVal]{}
	}
	return Result[secp256k1.FieldVal]{Value: r, IsValid: true}
}

func (Secp256k1) Equal(a, b secp256k1.FieldVal) bool { return a.Equals(&b) }
func (Secp256k1) IsZero(a secp256k1.FieldVal) bool   { return a.IsZero() }
func (Secp256k1) IsOdd(a secp256k1.FieldVal) bool    { return a.IsOdd() }

func (Secp256k1) CMov(a, b secp256k1.FieldVal, c bool) secp256k1.FieldVal {
	// decred has no conditional move, so select on the encodings
	ab, bb := a.Bytes(), b.Bytes()
	bit := 0
	if c {
		bit = 1
	}
	ctSelect(bit, ab[:], bb[:])
	var r secp256k1.FieldVal
	r.SetBytes(ab)
	return r
}

func (Secp256k1) Encode(a secp256k1.FieldVal) []byte {
	b := a.Bytes()
	return b[:]
}

func (Secp256k1) Decode(b []byte) (secp256k1.FieldVal, error) {
	var r secp256k1.FieldVal
	if len(b) != 32 {
		return r, errors.Wrapf(ErrInvalidLength, "expected 32 bytes, got %d", len(b))
	}
	if overflow := r.SetByteSlice(b); overflow {
		return secp256k1.FieldVal{}, ErrNotCanonical
	}
	return r, nil
}
