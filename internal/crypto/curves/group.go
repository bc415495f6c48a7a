package curves

import (
	"crypto/rand"
	"math/big"
	"sort"

	fe "filippo.io/edwards25519/field"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/bls12381"
	"github.com/smallyu/go-curves/internal/crypto/edwards"
	"github.com/smallyu/go-curves/internal/crypto/field"
	"github.com/smallyu/go-curves/internal/crypto/hashtocurve"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
	"github.com/smallyu/go-curves/internal/telemetry"
)

// Common errors
var (
	ErrUnknownCurve = errors.New("curves: unknown curve")
	ErrUnsupported  = errors.New("curves: operation not supported by this curve")
	ErrMixedGroups  = errors.New("curves: operands belong to different groups")
)

// Point is a group element of one of the registered curves.
type Point interface {
	// Bytes returns the canonical compressed encoding of the point.
	Bytes() []byte

	// Add adds this point to another point of the same group.
	Add(q Point) Point

	// ScalarMult multiplies this point by a scalar in constant time.
	ScalarMult(s Scalar) Point

	// Equal reports whether both points are the same group element.
	Equal(q Point) bool

	// IsIdentity reports whether the point is the neutral element.
	IsIdentity() bool
}

// Scalar is an element of a group's scalar field.
type Scalar interface {
	// Bytes returns the fixed-width encoding in the curve's byte order.
	Bytes() []byte

	// BigInt returns a copy of the scalar.
	BigInt() *big.Int

	// Add adds this scalar to another scalar.
	Add(s Scalar) Scalar

	// Mul multiplies this scalar by another scalar.
	Mul(s Scalar) Scalar

	// Invert returns the modular inverse, or zero for zero.
	Invert() Scalar
}

// Group is a prime-order group behind a byte-oriented API.
type Group interface {
	// Name returns the registry name of the group.
	Name() string

	// NewScalar returns a uniformly random non-zero scalar.
	NewScalar() (Scalar, error)

	// NewScalarFromBigInt reduces n modulo the group order.
	NewScalarFromBigInt(n *big.Int) Scalar

	// NewPointFromBytes decodes and validates a point.
	NewPointFromBytes(b []byte) (Point, error)

	// BasePoint returns the generator.
	BasePoint() Point

	// Identity returns the neutral element.
	Identity() Point

	// Order returns the order of the base point.
	Order() *big.Int

	// HashToPoint hashes msg with the curve's random-oracle suite. An
	// empty dst selects the suite's default tag.
	HashToPoint(msg, dst []byte) (Point, error)
}

type scalar struct {
	f *field.Prime
	v *big.Int
}

func (s *scalar) Bytes() []byte    { return s.f.Encode(s.v) }
func (s *scalar) BigInt() *big.Int { return new(big.Int).Set(s.v) }
func (s *scalar) Invert() Scalar   { return &scalar{f: s.f, v: s.f.Inv(s.v)} }

func (s *scalar) Add(o Scalar) Scalar {
	return &scalar{f: s.f, v: s.f.Add(s.v, s.f.FromBig(o.BigInt()))}
}

func (s *scalar) Mul(o Scalar) Scalar {
	return &scalar{f: s.f, v: s.f.Mul(s.v, s.f.FromBig(o.BigInt()))}
}

func randomScalar(f *field.Prime) (Scalar, error) {
	nMinus1 := new(big.Int).Sub(f.Order(), big.NewInt(1))
	k, err := rand.Int(rand.Reader, nMinus1)
	if err != nil {
		return nil, errors.Wrap(err, "curves: reading randomness")
	}
	return &scalar{f: f, v: k.Add(k, big.NewInt(1))}, nil
}

// wPoint is a Weierstrass group element together with its codec.
type wPoint[T any] struct {
	g *wGroup[T]
	p *weierstrass.Point[T]
}

func (p *wPoint[T]) Bytes() []byte {
	b, err := p.g.encode(p.p)
	if err != nil {
		// the identity of a curve without an encoding for it
		return nil
	}
	return b
}

func (p *wPoint[T]) Add(q Point) Point {
	o, ok := q.(*wPoint[T])
	if !ok || o.g != p.g {
		panic(ErrMixedGroups)
	}
	return &wPoint[T]{g: p.g, p: p.p.Add(o.p)}
}

func (p *wPoint[T]) ScalarMult(s Scalar) Point {
	k := p.g.c.Scalars().FromBig(s.BigInt())
	if k.Sign() == 0 || p.p.IsZero() {
		return &wPoint[T]{g: p.g, p: p.g.c.Zero()}
	}
	r, err := p.p.Multiply(k)
	if err != nil {
		panic(err)
	}
	return &wPoint[T]{g: p.g, p: r}
}

func (p *wPoint[T]) Equal(q Point) bool {
	o, ok := q.(*wPoint[T])
	return ok && o.g == p.g && p.p.Equal(o.p)
}

func (p *wPoint[T]) IsIdentity() bool { return p.p.IsZero() }

type wGroup[T any] struct {
	name   string
	c      *weierstrass.Curve[T]
	h      *hashtocurve.Hasher[T]
	encode func(*weierstrass.Point[T]) ([]byte, error)
	decode func([]byte) (*weierstrass.Point[T], error)
}

func (g *wGroup[T]) wrap(p *weierstrass.Point[T]) Point { return &wPoint[T]{g: g, p: p} }

func (g *wGroup[T]) Name() string               { return g.name }
func (g *wGroup[T]) Order() *big.Int            { return g.c.Order() }
func (g *wGroup[T]) BasePoint() Point           { return g.wrap(g.c.Generator()) }
func (g *wGroup[T]) Identity() Point            { return g.wrap(g.c.Zero()) }
func (g *wGroup[T]) NewScalar() (Scalar, error) { return randomScalar(g.c.Scalars()) }

func (g *wGroup[T]) NewScalarFromBigInt(n *big.Int) Scalar {
	f := g.c.Scalars()
	return &scalar{f: f, v: f.FromBig(n)}
}

func (g *wGroup[T]) NewPointFromBytes(b []byte) (Point, error) {
	p, err := g.decode(b)
	if err != nil {
		return nil, err
	}
	return g.wrap(p), nil
}

func (g *wGroup[T]) HashToPoint(msg, dst []byte) (Point, error) {
	if g.h == nil {
		return nil, errors.Wrapf(ErrUnsupported, "hash-to-curve on %s", g.name)
	}
	p, err := g.h.HashToCurve(msg, dst)
	if err != nil {
		return nil, err
	}
	return g.wrap(p), nil
}

func sec1Group[T any](name string, c *weierstrass.Curve[T], h *hashtocurve.Hasher[T]) *wGroup[T] {
	return &wGroup[T]{
		name:   name,
		c:      c,
		h:      h,
		encode: func(p *weierstrass.Point[T]) ([]byte, error) { return p.ToBytes(true) },
		decode: c.FromBytes,
	}
}

type ePoint[T any] struct {
	g *eGroup[T]
	p *edwards.Point[T]
}

func (p *ePoint[T]) Bytes() []byte { return p.p.ToBytes() }

func (p *ePoint[T]) Add(q Point) Point {
	o, ok := q.(*ePoint[T])
	if !ok || o.g != p.g {
		panic(ErrMixedGroups)
	}
	return &ePoint[T]{g: p.g, p: p.p.Add(o.p)}
}

func (p *ePoint[T]) ScalarMult(s Scalar) Point {
	k := p.g.c.Scalars().FromBig(s.BigInt())
	if k.Sign() == 0 {
		return &ePoint[T]{g: p.g, p: p.g.c.Zero()}
	}
	r, err := p.p.Multiply(k)
	if err != nil {
		panic(err)
	}
	return &ePoint[T]{g: p.g, p: r}
}

func (p *ePoint[T]) Equal(q Point) bool {
	o, ok := q.(*ePoint[T])
	return ok && o.g == p.g && p.p.Equal(o.p)
}

func (p *ePoint[T]) IsIdentity() bool { return p.p.IsZero() }

type eGroup[T any] struct {
	name string
	c    *edwards.Curve[T]
}

func (g *eGroup[T]) wrap(p *edwards.Point[T]) Point { return &ePoint[T]{g: g, p: p} }

func (g *eGroup[T]) Name() string               { return g.name }
func (g *eGroup[T]) Order() *big.Int            { return g.c.Order() }
func (g *eGroup[T]) BasePoint() Point           { return g.wrap(g.c.Generator()) }
func (g *eGroup[T]) Identity() Point            { return g.wrap(g.c.Zero()) }
func (g *eGroup[T]) NewScalar() (Scalar, error) { return randomScalar(g.c.Scalars()) }

func (g *eGroup[T]) NewScalarFromBigInt(n *big.Int) Scalar {
	f := g.c.Scalars()
	return &scalar{f: f, v: f.FromBig(n)}
}

// NewPointFromBytes decodes strictly and rejects points outside the
// prime-order subgroup.
func (g *eGroup[T]) NewPointFromBytes(b []byte) (Point, error) {
	p, err := g.c.FromBytes(b, false)
	if err != nil {
		return nil, err
	}
	if !p.IsTorsionFree() {
		return nil, errors.Wrap(edwards.ErrInvalidEncoding, "point has a small-order component")
	}
	return g.wrap(p), nil
}

func (g *eGroup[T]) HashToPoint(msg, dst []byte) (Point, error) {
	return nil, errors.Wrapf(ErrUnsupported, "hash-to-curve on %s", g.name)
}

// Registry names.
const (
	NameSecp256k1  = "secp256k1"
	NameP256       = "p256"
	NameEd25519    = "ed25519"
	NameBLS12381G1 = "bls12381g1"
	NameBLS12381G2 = "bls12381g2"
)

var registry = map[string]Group{
	NameSecp256k1: sec1Group[secp256k1.FieldVal](NameSecp256k1, Secp256k1, nil),
	NameP256:      sec1Group[*big.Int](NameP256, P256, P256Hasher),
	NameEd25519:   &eGroup[fe.Element]{name: NameEd25519, c: Ed25519},
	NameBLS12381G1: &wGroup[fp.Element]{
		name: NameBLS12381G1,
		c:    bls12381.G1,
		h:    bls12381.G1Hasher,
		encode: func(p *bls12381.G1Point) ([]byte, error) {
			return bls12381.G1ToBytes(p, true)
		},
		decode: bls12381.G1FromBytes,
	},
	NameBLS12381G2: &wGroup[bls12381.Fp2]{
		name: NameBLS12381G2,
		c:    bls12381.G2,
		h:    bls12381.G2Hasher,
		encode: func(p *bls12381.G2Point) ([]byte, error) {
			return bls12381.G2ToBytes(p, true)
		},
		decode: bls12381.G2FromBytes,
	},
}

// ByName returns the registered group called name.
func ByName(name string) (Group, error) {
	g, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCurve, "%q", name)
	}
	return g, nil
}

// Names lists the registered groups in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func tableObserver(name string) func(window, size int) {
	return func(window, size int) { telemetry.ObserveTable(name) }
}

func init() {
	Secp256k1.OnTable(tableObserver(NameSecp256k1))
	P256.OnTable(tableObserver(NameP256))
	Ed25519.OnTable(tableObserver(NameEd25519))
	bls12381.G1.OnTable(tableObserver(NameBLS12381G1))
	bls12381.G2.OnTable(tableObserver(NameBLS12381G2))
}
