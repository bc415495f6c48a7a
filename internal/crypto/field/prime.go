package field

import (
	"crypto/subtle"
	"math/big"

	"github.com/pkg/errors"
)

// Prime is a prime field backed by math/big. It serves the curves that
// have no dedicated field implementation (P-256 and every scalar field).
// Elements are *big.Int values in [0, p) that are never mutated.
type Prime struct {
	p            *big.Int
	bits         int
	bytes        int
	littleEndian bool
	sqrt         func(*big.Int) Result[*big.Int]
}

// PrimeOption customizes a Prime field.
type PrimeOption func(*Prime)

// WithLittleEndian makes Encode and Decode use little-endian byte order.
func WithLittleEndian() PrimeOption {
	return func(f *Prime) { f.littleEndian = true }
}

// WithByteLen overrides the encoding width.
func WithByteLen(n int) PrimeOption {
	return func(f *Prime) { f.bytes = n }
}

// NewPrime returns the field of integers modulo p. p must be an odd prime.
func NewPrime(p *big.Int, opts ...PrimeOption) *Prime {
	if p.Sign() <= 0 || p.Bit(0) == 0 {
		panic("field: modulus must be an odd prime")
	}
	f := &Prime{
		p:     new(big.Int).Set(p),
		bits:  p.BitLen(),
		bytes: (p.BitLen() + 7) / 8,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.sqrt = SqrtFunc[*big.Int](f)
	log.WithField("bits", f.bits).Debug("prime field initialized")
	return f
}

func (f *Prime) Order() *big.Int { return new(big.Int).Set(f.p) }
func (f *Prime) BitLen() int     { return f.bits }
func (f *Prime) ByteLen() int    { return f.bytes }

func (f *Prime) Zero() *big.Int { return new(big.Int) }
func (f *Prime) One() *big.Int  { return big.NewInt(1) }

func (f *Prime) FromUint64(v uint64) *big.Int {
	return f.reduce(new(big.Int).SetUint64(v))
}

func (f *Prime) FromBig(v *big.Int) *big.Int {
	return f.reduce(new(big.Int).Set(v))
}

func (f *Prime) reduce(v *big.Int) *big.Int {
	return v.Mod(v, f.p)
}

func (f *Prime) Add(a, b *big.Int) *big.Int { return f.reduce(new(big.Int).Add(a, b)) }
func (f *Prime) Sub(a, b *big.Int) *big.Int { return f.reduce(new(big.Int).Sub(a, b)) }
func (f *Prime) Neg(a *big.Int) *big.Int    { return f.reduce(new(big.Int).Neg(a)) }
func (f *Prime) Mul(a, b *big.Int) *big.Int { return f.reduce(new(big.Int).Mul(a, b)) }
func (f *Prime) Sqr(a *big.Int) *big.Int    { return f.reduce(new(big.Int).Mul(a, a)) }

func (f *Prime) Inv(a *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).ModInverse(a, f.p)
}

func (f *Prime) Div(a, b *big.Int) *big.Int { return f.Mul(a, f.Inv(b)) }

func (f *Prime) Pow(a *big.Int, e *big.Int) *big.Int {
	if e.Sign() < 0 {
		panic("field: negative exponent")
	}
	return new(big.Int).Exp(a, e, f.p)
}

func (f *Prime) Sqrt(a *big.Int) Result[*big.Int] { return f.sqrt(a) }

func (f *Prime) Equal(a, b *big.Int) bool { return a.Cmp(b) == 0 }
func (f *Prime) IsZero(a *big.Int) bool   { return a.Sign() == 0 }
func (f *Prime) IsOdd(a *big.Int) bool    { return a.Bit(0) == 1 }

// IsValid reports whether a is in [0, p).
func (f *Prime) IsValid(a *big.Int) bool {
	return a != nil && a.Sign() >= 0 && a.Cmp(f.p) < 0
}

// IsValidNot0 reports whether a is in [1, p).
func (f *Prime) IsValidNot0(a *big.Int) bool {
	return f.IsValid(a) && a.Sign() != 0
}

// CMov selects between the fixed-width encodings of a and b so the
// memory access pattern does not depend on c.
func (f *Prime) CMov(a, b *big.Int, c bool) *big.Int {
	dst := make([]byte, f.bytes)
	a.FillBytes(dst)
	src := make([]byte, f.bytes)
	b.FillBytes(src)
	bit := 0
	if c {
		bit = 1
	}
	ctSelect(bit, dst, src)
	return new(big.Int).SetBytes(dst)
}

func (f *Prime) Encode(a *big.Int) []byte {
	out := make([]byte, f.bytes)
	a.FillBytes(out)
	if f.littleEndian {
		reverse(out)
	}
	return out
}

func (f *Prime) Decode(b []byte) (*big.Int, error) {
	if len(b) != f.bytes {
		return nil, errors.Wrapf(ErrInvalidLength, "expected %d bytes, got %d", f.bytes, len(b))
	}
	v := f.FromBytesUnreduced(b)
	if v.Cmp(f.p) >= 0 {
		return nil, ErrNotCanonical
	}
	return v, nil
}

// FromBytesUnreduced interprets b in the field's byte order without
// reducing or range checking it.
func (f *Prime) FromBytesUnreduced(b []byte) *big.Int {
	if !f.littleEndian {
		return new(big.Int).SetBytes(b)
	}
	le := make([]byte, len(b))
	copy(le, b)
	reverse(le)
	return new(big.Int).SetBytes(le)
}

// FromBytesReduced interprets b in the field's byte order and reduces it
// modulo p. Any length is accepted.
func (f *Prime) FromBytesReduced(b []byte) *big.Int {
	return f.reduce(f.FromBytesUnreduced(b))
}

// ctSelect overwrites dst with src when bit is 1.
func ctSelect(bit int, dst, src []byte) {
	subtle.ConstantTimeCopy(bit, dst, src)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
