package hashtocurve

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

// ScalarDST is the default tag of HashToScalar.
const ScalarDST = "HashToScalar-"

// Isogeny is a rational map (x, y) -> (xn/xd, y·yn/yd). Coefficients are
// listed from the constant term upwards.
type Isogeny[T any] struct {
	XNum, XDen, YNum, YDen []T
}

// IsogenyMap evaluates iso with a single batched inversion. Exceptional
// inputs, where a denominator vanishes, map to (0, 0).
func IsogenyMap[T any](f field.Field[T], iso Isogeny[T]) func(x, y T) (T, T) {
	horner := func(coeffs []T, x T) T {
		acc := coeffs[len(coeffs)-1]
		for i := len(coeffs) - 2; i >= 0; i-- {
			acc = f.Add(f.Mul(acc, x), coeffs[i])
		}
		return acc
	}
	return func(x, y T) (T, T) {
		xn, xd := horner(iso.XNum, x), horner(iso.XDen, x)
		yn, yd := horner(iso.YNum, x), horner(iso.YDen, x)
		inv := field.InvertBatchPassZero(f, []T{xd, yd})
		return f.Mul(xn, inv[0]), f.Mul(y, f.Mul(yn, inv[1]))
	}
}

// Config describes a hash-to-curve suite for one curve.
type Config[T any] struct {
	Curve *weierstrass.Curve[T]
	// Options.DST is the default random-oracle tag (the _RO_ suite).
	Options Options
	// EncodeDST is the default tag of EncodeToCurve (the _NU_ suite).
	EncodeDST []byte
	// MapToCurve maps one GF(p^m) element, given as m integers, to an
	// affine point on Curve. The point need not be in the subgroup.
	MapToCurve func(u []*big.Int) (x, y T)
}

// Hasher hashes byte strings to points of the prime-order subgroup.
type Hasher[T any] struct {
	cfg Config[T]
}

// NewHasher validates cfg.
func NewHasher[T any](cfg Config[T]) (*Hasher[T], error) {
	if cfg.Curve == nil || cfg.MapToCurve == nil {
		return nil, errors.Wrap(ErrInvalidOptions, "hasher needs a curve and a map")
	}
	if err := cfg.Options.validate(); err != nil {
		return nil, err
	}
	return &Hasher[T]{cfg: cfg}, nil
}

// MustHasher is NewHasher for package-level suites.
func MustHasher[T any](cfg Config[T]) *Hasher[T] {
	h, err := NewHasher(cfg)
	if err != nil {
		panic(err)
	}
	return h
}

// Curve returns the target curve.
func (h *Hasher[T]) Curve() *weierstrass.Curve[T] { return h.cfg.Curve }

// DST returns the default random-oracle tag.
func (h *Hasher[T]) DST() []byte { return h.cfg.Options.DST }

func (h *Hasher[T]) mapToPoint(u []*big.Int) *weierstrass.Point[T] {
	c := h.cfg.Curve
	f := c.Field()
	x, y := h.cfg.MapToCurve(u)
	if f.IsZero(x) && f.IsZero(y) {
		return c.Zero()
	}
	return c.NewPointUnchecked(x, y, f.One())
}

func (h *Hasher[T]) clear(p *weierstrass.Point[T]) (*weierstrass.Point[T], error) {
	p = p.ClearCofactor()
	if p.IsZero() {
		return p.Curve().Zero(), nil
	}
	if err := p.AssertValidity(); err != nil {
		return nil, errors.Wrap(err, "hashtocurve: mapped point")
	}
	return p, nil
}

func (h *Hasher[T]) options(dst, fallback []byte) Options {
	o := h.cfg.Options
	if dst != nil {
		o.DST = dst
	} else if fallback != nil {
		o.DST = fallback
	}
	return o
}

// HashToCurve is the uniform hash_to_curve encoding. A nil dst selects
// the suite default.
func (h *Hasher[T]) HashToCurve(msg, dst []byte) (*weierstrass.Point[T], error) {
	u, err := HashToField(msg, 2, h.options(dst, nil))
	if err != nil {
		return nil, err
	}
	q0, q1 := h.mapToPoint(u[0]), h.mapToPoint(u[1])
	return h.clear(q0.Add(q1))
}

// EncodeToCurve is the non-uniform encode_to_curve encoding.
func (h *Hasher[T]) EncodeToCurve(msg, dst []byte) (*weierstrass.Point[T], error) {
	u, err := HashToField(msg, 1, h.options(dst, h.cfg.EncodeDST))
	if err != nil {
		return nil, err
	}
	return h.clear(h.mapToPoint(u[0]))
}

// MapToCurve maps an already hashed field element and clears the
// cofactor.
func (h *Hasher[T]) MapToCurve(u []*big.Int) (*weierstrass.Point[T], error) {
	if len(u) != h.cfg.Options.M {
		return nil, errors.Wrapf(ErrInvalidOptions, "expected %d field coordinates, got %d", h.cfg.Options.M, len(u))
	}
	return h.clear(h.mapToPoint(u))
}

// HashToScalar hashes msg to an integer modulo the group order. The
// result may be zero.
func (h *Hasher[T]) HashToScalar(msg, dst []byte) (*big.Int, error) {
	o := h.cfg.Options
	o.P = h.cfg.Curve.Order()
	o.M = 1
	o.DST = []byte(ScalarDST)
	if dst != nil {
		o.DST = dst
	}
	u, err := HashToField(msg, 1, o)
	if err != nil {
		return nil, err
	}
	return u[0][0], nil
}
