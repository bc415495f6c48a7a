// Package edwards implements twisted Edwards curves a·x² + y² = 1 + d·x²·y²
// in extended coordinates (X, Y, Z, T) with x = X/Z, y = Y/Z and
// x·y = T/Z, together with EdDSA over them.
package edwards

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/wnaf"
)

// Common errors
var (
	ErrInvalidConfig    = errors.New("edwards: invalid curve parameters")
	ErrScalarOutOfRange = errors.New("edwards: scalar out of range")
	ErrNotOnCurve       = errors.New("edwards: point is not on curve")
	ErrIdentity         = errors.New("edwards: point is the identity")
	ErrInvalidEncoding  = errors.New("edwards: invalid point encoding")
)

var log = logrus.WithField("pkg", "edwards")

// Config holds the parameters of a twisted Edwards curve.
type Config[T any] struct {
	Name string
	// Field must encode little-endian, as point encodings are.
	Field field.Field[T]
	A, D  T
	// N is the prime subgroup order and H the cofactor.
	N, H   *big.Int
	Gx, Gy T

	// UVRatio returns sqrt(u/v). When nil it is derived from Sqrt.
	UVRatio func(u, v T) field.Result[T]

	BaseWindow int
}

// Curve is a validated Edwards curve.
type Curve[T any] struct {
	cfg    Config[T]
	f      field.Field[T]
	fn     *field.Prime
	zero   *Point[T]
	base   *Point[T]
	engine *wnaf.Engine[*Point[T]]
	// mask is 2^(8·ByteLen), the ZIP215 bound on encoded y
	mask *big.Int
}

// NewCurve validates cfg and returns the curve.
func NewCurve[T any](cfg Config[T]) (*Curve[T], error) {
	if cfg.Field == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "missing field")
	}
	if cfg.N == nil || cfg.N.Sign() <= 0 || cfg.N.Bit(0) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "subgroup order must be an odd prime")
	}
	if cfg.H == nil || cfg.H.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "cofactor must be positive")
	}
	f := cfg.Field
	// a != d and both non-zero
	if f.IsZero(cfg.A) || f.IsZero(cfg.D) || f.Equal(cfg.A, cfg.D) {
		return nil, errors.Wrap(ErrInvalidConfig, "degenerate a or d")
	}
	if cfg.UVRatio == nil {
		cfg.UVRatio = func(u, v T) field.Result[T] {
			if f.IsZero(v) {
				return field.Result[T]{Value: f.Zero()}
			}
			return f.Sqrt(f.Div(u, v))
		}
	}

	c := &Curve[T]{
		cfg:  cfg,
		f:    f,
		fn:   field.NewPrime(cfg.N, field.WithLittleEndian(), field.WithByteLen(f.ByteLen())),
		mask: new(big.Int).Lsh(big.NewInt(1), uint(8*f.ByteLen())),
	}
	c.engine = wnaf.New[*Point[T]](group[T]{c}, cfg.N.BitLen())
	c.zero = &Point[T]{c: c, x: f.Zero(), y: f.One(), z: f.One(), t: f.Zero()}

	if !c.isValidXY(cfg.Gx, cfg.Gy) {
		return nil, errors.Wrap(ErrInvalidConfig, "generator is not on the curve")
	}
	c.base = c.fromAffine(cfg.Gx, cfg.Gy)
	w := cfg.BaseWindow
	if w == 0 {
		w = 8
	}
	if err := c.engine.SetWindow(c.base, w); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	log.WithFields(logrus.Fields{"curve": cfg.Name, "bits": cfg.N.BitLen()}).Debug("curve ready")
	return c, nil
}

// MustCurve is NewCurve for package-level curve definitions.
func MustCurve[T any](cfg Config[T]) *Curve[T] {
	c, err := NewCurve(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Curve[T]) Name() string              { return c.cfg.Name }
func (c *Curve[T]) Field() field.Field[T]     { return c.f }
func (c *Curve[T]) Scalars() *field.Prime     { return c.fn }
func (c *Curve[T]) Order() *big.Int           { return new(big.Int).Set(c.cfg.N) }
func (c *Curve[T]) Cofactor() *big.Int        { return new(big.Int).Set(c.cfg.H) }
func (c *Curve[T]) Zero() *Point[T]           { return c.zero }
func (c *Curve[T]) Generator() *Point[T]      { return c.base }
func (c *Curve[T]) OnTable(fn func(int, int)) { c.engine.OnTable = fn }

func (c *Curve[T]) isValidXY(x, y T) bool {
	f := c.f
	x2, y2 := f.Sqr(x), f.Sqr(y)
	left := f.Add(f.Mul(c.cfg.A, x2), y2)
	right := f.Add(f.One(), f.Mul(c.cfg.D, f.Mul(x2, y2)))
	return f.Equal(left, right)
}

func (c *Curve[T]) fromAffine(x, y T) *Point[T] {
	return &Point[T]{c: c, x: x, y: y, z: c.f.One(), t: c.f.Mul(x, y)}
}

// FromAffine returns (x, y) after checking the curve equation.
func (c *Curve[T]) FromAffine(x, y T) (*Point[T], error) {
	if !c.isValidXY(x, y) {
		return nil, ErrNotOnCurve
	}
	return c.fromAffine(x, y), nil
}

// NewPointUnchecked builds a point from extended coordinates without
// validation.
func (c *Curve[T]) NewPointUnchecked(x, y, z, t T) *Point[T] {
	return &Point[T]{c: c, x: x, y: y, z: z, t: t}
}

// NormalizeZ converts points to Z = 1 with one shared inversion.
func (c *Curve[T]) NormalizeZ(points []*Point[T]) []*Point[T] {
	zs := make([]T, len(points))
	for i, p := range points {
		zs[i] = p.z
	}
	inv := field.InvertBatchPassZero(c.f, zs)
	out := make([]*Point[T], len(points))
	for i, p := range points {
		x, y := c.f.Mul(p.x, inv[i]), c.f.Mul(p.y, inv[i])
		out[i] = c.fromAffine(x, y)
	}
	return out
}

type group[T any] struct{ c *Curve[T] }

func (g group[T]) Zero() *Point[T]                       { return g.c.zero }
func (g group[T]) Add(a, b *Point[T]) *Point[T]          { return a.Add(b) }
func (g group[T]) Double(a *Point[T]) *Point[T]          { return a.Double() }
func (g group[T]) Negate(a *Point[T]) *Point[T]          { return a.Negate() }
func (g group[T]) CNegate(a *Point[T], c bool) *Point[T] { return a.cnegate(c) }
