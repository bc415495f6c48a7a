// Package weierstrass implements prime-order groups on short Weierstrass
// curves y² = x³ + ax + b in projective coordinates, using the complete
// addition formulas of Renes, Costello and Batina (2015). The same code
// serves any base field that satisfies field.Field, including the
// quadratic extension used by BLS12-381 G2.
package weierstrass

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/crypto/decompose"
	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/wnaf"
)

// Common errors
var (
	ErrInvalidConfig    = errors.New("weierstrass: invalid curve parameters")
	ErrScalarOutOfRange = errors.New("weierstrass: scalar out of range")
	ErrNotOnCurve       = errors.New("weierstrass: point is not on curve")
	ErrNotInSubgroup    = errors.New("weierstrass: point is not in prime-order subgroup")
	ErrIdentity         = errors.New("weierstrass: point is the identity")
	ErrInvalidEncoding  = errors.New("weierstrass: invalid point encoding")
)

var log = logrus.WithField("pkg", "weierstrass")

// DefaultBaseWindow is the window size registered for the generator.
const DefaultBaseWindow = 8

// Endomorphism describes the GLV map (x, y) -> (β·x, y), which acts as
// multiplication by λ on the prime-order subgroup.
type Endomorphism[T any] struct {
	Beta  T
	Basis decompose.Basis
}

// Config holds the parameters of a curve.
type Config[T any] struct {
	Name  string
	Field field.Field[T]
	A, B  T
	// N is the order of the prime subgroup and H the cofactor.
	N, H   *big.Int
	Gx, Gy T

	// AllowInfinity accepts the identity as a valid point, encoded as
	// a single zero byte.
	AllowInfinity bool
	Endo          *Endomorphism[T]

	// Optional fast paths. When nil the generic multiplication by N
	// and by H are used.
	IsTorsionFree func(c *Curve[T], p *Point[T]) bool
	ClearCofactor func(c *Curve[T], p *Point[T]) *Point[T]

	// BaseWindow overrides DefaultBaseWindow.
	BaseWindow int
}

// Curve is a validated curve with its scalar field and multiplication
// engine. It is immutable and safe for concurrent use.
type Curve[T any] struct {
	cfg    Config[T]
	f      field.Field[T]
	fn     *field.Prime
	b3     T
	zero   *Point[T]
	base   *Point[T]
	engine *wnaf.Engine[*Point[T]]
}

// NewCurve validates cfg and returns the curve. The discriminant must be
// non-zero, the generator must lie on the curve and the endomorphism
// basis, if any, must be well formed.
func NewCurve[T any](cfg Config[T]) (*Curve[T], error) {
	if cfg.Field == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "missing field")
	}
	if cfg.N == nil || cfg.N.Sign() <= 0 || cfg.N.Bit(0) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "subgroup order must be an odd prime")
	}
	if cfg.H == nil {
		cfg.H = big.NewInt(1)
	}
	if cfg.H.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "cofactor must be positive")
	}
	f := cfg.Field

	// 4a³ + 27b² != 0
	a3 := f.Mul(f.Mul(f.Sqr(cfg.A), cfg.A), f.FromUint64(4))
	b2 := f.Mul(f.Sqr(cfg.B), f.FromUint64(27))
	if f.IsZero(f.Add(a3, b2)) {
		return nil, errors.Wrap(ErrInvalidConfig, "singular curve")
	}
	if cfg.Endo != nil {
		for _, row := range cfg.Endo.Basis {
			if row[0] == nil || row[1] == nil {
				return nil, errors.Wrap(ErrInvalidConfig, "incomplete endomorphism basis")
			}
		}
	}

	c := &Curve[T]{
		cfg: cfg,
		f:   f,
		fn:  field.NewPrime(cfg.N),
		b3:  f.Mul(cfg.B, f.FromUint64(3)),
	}
	c.engine = wnaf.New[*Point[T]](group[T]{c}, cfg.N.BitLen())
	c.zero = &Point[T]{c: c, x: f.Zero(), y: f.One(), z: f.Zero()}

	if !c.isValidXY(cfg.Gx, cfg.Gy) {
		return nil, errors.Wrap(ErrInvalidConfig, "generator is not on the curve")
	}
	c.base = &Point[T]{c: c, x: cfg.Gx, y: cfg.Gy, z: f.One()}
	w := cfg.BaseWindow
	if w == 0 {
		w = DefaultBaseWindow
	}
	if err := c.engine.SetWindow(c.base, w); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	log.WithFields(logrus.Fields{"curve": cfg.Name, "bits": cfg.N.BitLen(), "glv": cfg.Endo != nil}).Debug("curve ready")
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

// Name returns the configured curve name.
func (c *Curve[T]) Name() string { return c.cfg.Name }

// Field returns the base field.
func (c *Curve[T]) Field() field.Field[T] { return c.f }

// Scalars returns the scalar field Z/nZ.
func (c *Curve[T]) Scalars() *field.Prime { return c.fn }

// Order returns the prime subgroup order n.
func (c *Curve[T]) Order() *big.Int { return new(big.Int).Set(c.cfg.N) }

// Cofactor returns the cofactor h.
func (c *Curve[T]) Cofactor() *big.Int { return new(big.Int).Set(c.cfg.H) }

// A returns the curve coefficient a.
func (c *Curve[T]) A() T { return c.cfg.A }

// B returns the curve coefficient b.
func (c *Curve[T]) B() T { return c.cfg.B }

// Zero returns the point at infinity.
func (c *Curve[T]) Zero() *Point[T] { return c.zero }

// Generator returns the base point.
func (c *Curve[T]) Generator() *Point[T] { return c.base }

// OnTable installs a hook called after each precomputed table is built.
// It must be set before the curve is used concurrently.
func (c *Curve[T]) OnTable(fn func(window, size int)) { c.engine.OnTable = fn }

// rhs returns x³ + ax + b.
func (c *Curve[T]) rhs(x T) T {
	f := c.f
	x3 := f.Mul(f.Sqr(x), x)
	return f.Add(f.Add(x3, f.Mul(c.cfg.A, x)), c.cfg.B)
}

func (c *Curve[T]) isValidXY(x, y T) bool {
	return c.f.Equal(c.f.Sqr(y), c.rhs(x))
}

// NewPointUnchecked builds a point from projective coordinates without
// any validation. Callers must run AssertValidity before trusting it.
func (c *Curve[T]) NewPointUnchecked(x, y, z T) *Point[T] {
	return &Point[T]{c: c, x: x, y: y, z: z}
}

// FromAffine returns the point (x, y) after checking it lies on the
// curve and in the prime-order subgroup. (0, 0) is the identity.
func (c *Curve[T]) FromAffine(x, y T) (*Point[T], error) {
	p := c.fromAffine(x, y)
	if err := p.AssertValidity(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Curve[T]) fromAffine(x, y T) *Point[T] {
	if c.f.IsZero(x) && c.f.IsZero(y) {
		return c.zero
	}
	return &Point[T]{c: c, x: x, y: y, z: c.f.One()}
}

// NormalizeZ converts points to Z = 1 sharing a single field inversion.
// The identity stays the identity.
func (c *Curve[T]) NormalizeZ(points []*Point[T]) []*Point[T] {
	zs := make([]T, len(points))
	for i, p := range points {
		zs[i] = p.z
	}
	inv := field.InvertBatchPassZero(c.f, zs)
	out := make([]*Point[T], len(points))
	for i, p := range points {
		if p.IsZero() {
			out[i] = c.zero
			continue
		}
		out[i] = &Point[T]{c: c, x: c.f.Mul(p.x, inv[i]), y: c.f.Mul(p.y, inv[i]), z: c.f.One()}
	}
	return out
}

// group adapts the curve to the wNAF engine.
type group[T any] struct{ c *Curve[T] }

func (g group[T]) Zero() *Point[T]                       { return g.c.zero }
func (g group[T]) Add(a, b *Point[T]) *Point[T]          { return a.Add(b) }
func (g group[T]) Double(a *Point[T]) *Point[T]          { return a.Double() }
func (g group[T]) Negate(a *Point[T]) *Point[T]          { return a.Negate() }
func (g group[T]) CNegate(a *Point[T], c bool) *Point[T] { return a.cnegate(c) }
