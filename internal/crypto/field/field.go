// Package field defines the arithmetic contract shared by every prime field
// and extension field used by the curve packages, together with the
// concrete providers backing each curve.
package field

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Common errors returned by field providers.
var (
	ErrInvalidLength = errors.New("field: invalid encoding length")
	ErrNotCanonical  = errors.New("field: encoding is not canonical")
	ErrZeroInverse   = errors.New("field: inverse of zero")
)

var log = logrus.WithField("pkg", "field")

// Result carries the outcome of an operation that can fail for
// mathematical reasons, such as a square root of a non-residue.
type Result[T any] struct {
	Value   T
	IsValid bool
}

// Field is implemented by prime fields and by the extension tower.
// Implementations never mutate their arguments and always return
// fully reduced values.
type Field[T any] interface {
	// Order returns the number of elements of the field.
	Order() *big.Int
	// BitLen returns the bit length of the characteristic.
	BitLen() int
	// ByteLen returns the width of Encode's output.
	ByteLen() int

	Zero() T
	One() T
	FromUint64(v uint64) T
	// FromBig reduces v modulo the characteristic.
	FromBig(v *big.Int) T

	Add(a, b T) T
	Sub(a, b T) T
	Neg(a T) T
	Mul(a, b T) T
	Sqr(a T) T
	// Inv returns the multiplicative inverse of a. Inv of zero is zero;
	// callers that must reject zero check IsZero first.
	Inv(a T) T
	Div(a, b T) T
	Pow(a T, e *big.Int) T
	Sqrt(a T) Result[T]

	Equal(a, b T) bool
	IsZero(a T) bool
	// IsOdd is the sgn0 function of RFC 9380.
	IsOdd(a T) bool
	// CMov returns b when c is set and a otherwise, in constant time
	// with respect to c.
	CMov(a, b T, c bool) T

	Encode(a T) []byte
	Decode(b []byte) (T, error)
}
