// Package polynomial implements polynomials over a prime scalar field:
// Shamir-style random polynomials, Horner evaluation, arithmetic,
// Lagrange interpolation and a radix-2 FFT domain.
package polynomial

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/field"
)

// Common errors
var (
	ErrMixedFields     = errors.New("polynomial: operands use different fields")
	ErrDuplicatePoint  = errors.New("polynomial: duplicate interpolation point")
	ErrNotEnoughPoints = errors.New("polynomial: not enough points")
)

// Polynomial represents f(x) = a_0 + a_1·x + ... + a_t·x^t over Field.
type Polynomial struct {
	Coefficients []*big.Int
	Field        *field.Prime
}

// New generates a random polynomial of the given degree with the
// provided constant term. A nil secret is replaced by a random one.
func New(f *field.Prime, degree int, secret *big.Int) (*Polynomial, error) {
	coeffs := make([]*big.Int, degree+1)
	var err error

	if secret == nil {
		if coeffs[0], err = randomElement(f); err != nil {
			return nil, err
		}
	} else {
		coeffs[0] = f.FromBig(secret)
	}
	for i := 1; i <= degree; i++ {
		if coeffs[i], err = randomElement(f); err != nil {
			return nil, err
		}
	}
	return &Polynomial{Coefficients: coeffs, Field: f}, nil
}

func randomElement(f *field.Prime) (*big.Int, error) {
	k, err := rand.Int(rand.Reader, f.Order())
	if err != nil {
		return nil, errors.Wrap(err, "polynomial: reading randomness")
	}
	return k, nil
}

// FromCoefficients reduces coeffs into f.
func FromCoefficients(f *field.Prime, coeffs []*big.Int) *Polynomial {
	out := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		out[i] = f.FromBig(c)
	}
	return &Polynomial{Coefficients: out, Field: f}
}

// Degree returns the index of the highest non-zero coefficient, or -1
// for the zero polynomial.
func (p *Polynomial) Degree() int {
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		if p.Coefficients[i].Sign() != 0 {
			return i
		}
	}
	return -1
}

// Normalize drops zero coefficients above the degree.
func (p *Polynomial) Normalize() *Polynomial {
	d := p.Degree()
	if d < 0 {
		return &Polynomial{Coefficients: []*big.Int{p.Field.Zero()}, Field: p.Field}
	}
	return &Polynomial{Coefficients: p.Coefficients[:d+1], Field: p.Field}
}

// Evaluate calculates f(x) with Horner's method.
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	f := p.Field
	if len(p.Coefficients) == 0 {
		return f.Zero()
	}
	x = f.FromBig(x)
	degree := len(p.Coefficients) - 1
	result := f.FromBig(p.Coefficients[degree])
	for i := degree - 1; i >= 0; i-- {
		result = f.Add(f.Mul(result, x), p.Coefficients[i])
	}
	return result
}

// EvaluateMulti calculates f(x) for every x.
func (p *Polynomial) EvaluateMulti(xs []*big.Int) []*big.Int {
	results := make([]*big.Int, len(xs))
	for i, x := range xs {
		results[i] = p.Evaluate(x)
	}
	return results
}

func (p *Polynomial) coeff(i int) *big.Int {
	if i < len(p.Coefficients) {
		return p.Coefficients[i]
	}
	return p.Field.Zero()
}

func (p *Polynomial) combine(q *Polynomial, op func(a, b *big.Int) *big.Int) (*Polynomial, error) {
	if p.Field.Order().Cmp(q.Field.Order()) != 0 {
		return nil, ErrMixedFields
	}
	n := len(p.Coefficients)
	if len(q.Coefficients) > n {
		n = len(q.Coefficients)
	}
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = op(p.coeff(i), q.coeff(i))
	}
	return (&Polynomial{Coefficients: out, Field: p.Field}).Normalize(), nil
}

// Add returns p + q.
func (p *Polynomial) Add(q *Polynomial) (*Polynomial, error) { return p.combine(q, p.Field.Add) }

// Sub returns p - q.
func (p *Polynomial) Sub(q *Polynomial) (*Polynomial, error) { return p.combine(q, p.Field.Sub) }

// Mul returns p·q by schoolbook multiplication. Domain.Mul is the FFT
// variant for large operands.
func (p *Polynomial) Mul(q *Polynomial) (*Polynomial, error) {
	f := p.Field
	if f.Order().Cmp(q.Field.Order()) != 0 {
		return nil, ErrMixedFields
	}
	a, b := p.Normalize(), q.Normalize()
	out := make([]*big.Int, len(a.Coefficients)+len(b.Coefficients)-1)
	for i := range out {
		out[i] = f.Zero()
	}
	for i, x := range a.Coefficients {
		if x.Sign() == 0 {
			continue
		}
		for j, y := range b.Coefficients {
			out[i+j] = f.Add(out[i+j], f.Mul(x, y))
		}
	}
	return (&Polynomial{Coefficients: out, Field: f}).Normalize(), nil
}

// Scale returns c·p.
func (p *Polynomial) Scale(c *big.Int) *Polynomial {
	f := p.Field
	out := make([]*big.Int, len(p.Coefficients))
	for i, a := range p.Coefficients {
		out[i] = f.Mul(a, c)
	}
	return &Polynomial{Coefficients: out, Field: f}
}

func checkDistinct(xs []*big.Int) error {
	seen := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		k := x.String()
		if _, ok := seen[k]; ok {
			return errors.Wrapf(ErrDuplicatePoint, "x = %s", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// LagrangeCoefficients returns λ_i with f(at) = Σ λ_i·f(x_i) for every
// polynomial of degree below len(xs).
func LagrangeCoefficients(f *field.Prime, xs []*big.Int, at *big.Int) ([]*big.Int, error) {
	if len(xs) == 0 {
		return nil, ErrNotEnoughPoints
	}
	reduced := make([]*big.Int, len(xs))
	for i, x := range xs {
		reduced[i] = f.FromBig(x)
	}
	if err := checkDistinct(reduced); err != nil {
		return nil, err
	}
	at = f.FromBig(at)
	nums := make([]*big.Int, len(xs))
	dens := make([]*big.Int, len(xs))
	for i, xi := range reduced {
		num, den := f.One(), f.One()
		for j, xj := range reduced {
			if i == j {
				continue
			}
			num = f.Mul(num, f.Sub(at, xj))
			den = f.Mul(den, f.Sub(xi, xj))
		}
		nums[i], dens[i] = num, den
	}
	inv := field.InvertBatch[*big.Int](f, dens)
	for i := range nums {
		nums[i] = f.Mul(nums[i], inv[i])
	}
	return nums, nil
}

// Interpolate returns the unique polynomial of degree below len(xs)
// through the points (xs[i], ys[i]).
func Interpolate(f *field.Prime, xs, ys []*big.Int) (*Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, errors.Errorf("polynomial: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, ErrNotEnoughPoints
	}
	if err := checkDistinct(xs); err != nil {
		return nil, err
	}
	acc := &Polynomial{Coefficients: []*big.Int{f.Zero()}, Field: f}
	for i, xi := range xs {
		basis := &Polynomial{Coefficients: []*big.Int{f.One()}, Field: f}
		den := f.One()
		for j, xj := range xs {
			if i == j {
				continue
			}
			// (x - x_j)
			term := &Polynomial{Coefficients: []*big.Int{f.Neg(f.FromBig(xj)), f.One()}, Field: f}
			basis, _ = basis.Mul(term)
			den = f.Mul(den, f.Sub(f.FromBig(xi), f.FromBig(xj)))
		}
		scaled := basis.Scale(f.Mul(f.FromBig(ys[i]), f.Inv(den)))
		acc, _ = acc.Add(scaled)
	}
	return acc, nil
}
