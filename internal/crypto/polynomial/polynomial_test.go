package polynomial

import (
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-curves/internal/crypto/bls12381"
	"github.com/smallyu/go-curves/internal/crypto/field"
)

func secpScalars() *field.Prime { return field.NewPrime(secp256k1.S256().Params().N) }

func blsScalars() *field.Prime { return field.NewPrime(bls12381.Order()) }

func ints(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestNew(t *testing.T) {
	f := secpScalars()

	t.Run("with random secret", func(t *testing.T) {
		poly, err := New(f, 2, nil)
		if err != nil {
			t.Fatalf("Failed to create polynomial: %v", err)
		}
		if len(poly.Coefficients) != 3 {
			t.Errorf("Expected 3 coefficients for degree 2, got %d", len(poly.Coefficients))
		}
		for i, c := range poly.Coefficients {
			if c == nil || c.Cmp(f.Order()) >= 0 {
				t.Errorf("Coefficient %d is out of range", i)
			}
		}
	})

	t.Run("with provided secret", func(t *testing.T) {
		secret := big.NewInt(12345)
		poly, err := New(f, 2, secret)
		require.NoError(t, err)
		assert.Equal(t, 0, poly.Coefficients[0].Cmp(secret))
	})

	t.Run("degree 0", func(t *testing.T) {
		poly, err := New(f, 0, big.NewInt(999))
		require.NoError(t, err)
		assert.Len(t, poly.Coefficients, 1)
	})
}

func TestEvaluate(t *testing.T) {
	f := secpScalars()
	q := f.Order()

	tests := []struct {
		name   string
		coeffs []*big.Int
		x      int64
		want   int64
	}{
		{"constant", ints(5), 100, 5},
		{"linear at zero", ints(3, 2), 0, 3},
		{"linear", ints(3, 2), 5, 13},
		{"quadratic", ints(1, 2, 3), 3, 34},
		{"wraps modulo q", []*big.Int{new(big.Int).Sub(q, big.NewInt(1)), big.NewInt(2)}, 1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			poly := &Polynomial{Coefficients: tc.coeffs, Field: f}
			got := poly.Evaluate(big.NewInt(tc.x))
			if got.Cmp(big.NewInt(tc.want)) != 0 {
				t.Errorf("f(%d) = %s, expected %d", tc.x, got, tc.want)
			}
		})
	}
}

func TestEvaluateMulti(t *testing.T) {
	poly := &Polynomial{Coefficients: ints(5, 3), Field: secpScalars()}
	got := poly.EvaluateMulti(ints(0, 1, 2, 10))
	assert.Equal(t, ints(5, 8, 11, 35), got)
}

func TestArithmetic(t *testing.T) {
	f := blsScalars()
	p := FromCoefficients(f, ints(1, 2, 3))
	q := FromCoefficients(f, ints(4, 0, -3))

	sum, err := p.Add(q)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Degree())
	assert.Equal(t, ints(5, 2), sum.Coefficients)

	diff, err := sum.Sub(q)
	require.NoError(t, err)
	assert.Equal(t, p.Coefficients, diff.Coefficients)

	zero, err := p.Sub(p)
	require.NoError(t, err)
	assert.Equal(t, -1, zero.Degree())

	prod, err := p.Mul(q)
	require.NoError(t, err)
	assert.Equal(t, 4, prod.Degree())
	for _, x := range ints(0, 1, 7, 1000) {
		want := f.Mul(p.Evaluate(x), q.Evaluate(x))
		assert.Equal(t, want, prod.Evaluate(x))
	}

	_, err = p.Add(FromCoefficients(secpScalars(), ints(1)))
	assert.True(t, errors.Is(err, ErrMixedFields))
}

func TestLagrangeRecoversSecret(t *testing.T) {
	f := secpScalars()
	secret := big.NewInt(42)
	poly, err := New(f, 2, secret)
	require.NoError(t, err)

	xs := ints(1, 2, 3)
	shares := poly.EvaluateMulti(xs)

	// λ = (3, -3, 1) for x = 1, 2, 3 at zero
	lambdas, err := LagrangeCoefficients(f, xs, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), lambdas[0])
	assert.Equal(t, f.Neg(big.NewInt(3)), lambdas[1])
	assert.Equal(t, big.NewInt(1), lambdas[2])

	acc := f.Zero()
	for i := range shares {
		acc = f.Add(acc, f.Mul(lambdas[i], shares[i]))
	}
	assert.Equal(t, 0, acc.Cmp(secret))

	interp, err := Interpolate(f, xs, shares)
	require.NoError(t, err)
	assert.Equal(t, poly.Normalize().Coefficients, interp.Coefficients)

	_, err = LagrangeCoefficients(f, ints(1, 1), big.NewInt(0))
	assert.True(t, errors.Is(err, ErrDuplicatePoint))
	_, err = Interpolate(f, nil, nil)
	assert.True(t, errors.Is(err, ErrNotEnoughPoints))
}

func TestDomainRoots(t *testing.T) {
	d, err := NewDomain(blsScalars(), big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, 32, d.MaxLog())

	f := d.Field()
	for _, logN := range []int{0, 1, 4, 10} {
		w, err := d.Omega(logN)
		require.NoError(t, err)
		n := new(big.Int).Lsh(big.NewInt(1), uint(logN))
		assert.Equal(t, f.One(), f.Pow(w, n), "ω^N = 1")
		if logN > 0 {
			half := new(big.Int).Rsh(n, 1)
			assert.NotEqual(t, f.One(), f.Pow(w, half), "ω is primitive")
		}
	}

	roots, err := d.Roots(3)
	require.NoError(t, err)
	inv, err := d.InverseRoots(3)
	require.NoError(t, err)
	for i := range roots {
		assert.Equal(t, f.One(), f.Mul(roots[i], inv[i]))
	}
	brp, err := d.BitReversedRoots(3)
	require.NoError(t, err)
	assert.Equal(t, []*big.Int{roots[0], roots[4], roots[2], roots[6], roots[1], roots[5], roots[3], roots[7]}, brp)

	again, err := d.Roots(3)
	require.NoError(t, err)
	assert.Same(t, &roots[0], &again[0])

	_, err = d.Roots(33)
	assert.True(t, errors.Is(err, ErrDomainSize))
	_, err = NewDomain(blsScalars(), big.NewInt(4))
	assert.True(t, errors.Is(err, ErrDomainSize))
}

func TestFFT(t *testing.T) {
	d, err := NewDomain(blsScalars(), nil)
	require.NoError(t, err)
	f := d.Field()

	coeffs := ints(3, 1, 4, 1, 5, 9, 2, 6)
	evals, err := d.FFT(coeffs)
	require.NoError(t, err)
	roots, err := d.Roots(3)
	require.NoError(t, err)
	poly := FromCoefficients(f, coeffs)
	for i, w := range roots {
		assert.Equal(t, poly.Evaluate(w), evals[i], "evaluation %d", i)
	}

	back, err := d.InverseFFT(evals)
	require.NoError(t, err)
	assert.Equal(t, coeffs, back)

	_, err = d.FFT(ints(1, 2, 3))
	assert.True(t, errors.Is(err, ErrDomainSize))
}

func TestDomainMulMatchesSchoolbook(t *testing.T) {
	f := blsScalars()
	d, err := NewDomain(f, nil)
	require.NoError(t, err)

	p, err := New(f, 20, nil)
	require.NoError(t, err)
	q, err := New(f, 13, nil)
	require.NoError(t, err)

	want, err := p.Mul(q)
	require.NoError(t, err)
	got, err := d.Mul(p, q)
	require.NoError(t, err)
	assert.Equal(t, want.Coefficients, got.Coefficients)
	assert.Equal(t, 33, got.Degree())
}

func TestPowerOfTwoHelpers(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(64))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(12))
	assert.Equal(t, 1, NextPowerOfTwo(0))
	assert.Equal(t, 16, NextPowerOfTwo(9))
	assert.Equal(t, 16, NextPowerOfTwo(16))
}
