package field

import (
	"crypto/rand"
	"math/big"
	"testing"

	fe "filippo.io/edwards25519/field"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingField wraps a field and counts calls to Inv.
type countingField struct {
	*Prime
	inversions int
}

func (c *countingField) Inv(a *big.Int) *big.Int {
	c.inversions++
	return c.Prime.Inv(a)
}

func randElement(t *testing.T, p *big.Int) *big.Int {
	t.Helper()
	v, err := rand.Int(rand.Reader, p)
	require.NoError(t, err)
	return v
}

func TestInvertBatchSingleInversion(t *testing.T) {
	p := secp256k1.S256().N
	for _, n := range []int{1, 3, 17, 64} {
		f := &countingField{Prime: NewPrime(p)}
		xs := make([]*big.Int, n)
		for i := range xs {
			xs[i] = randElement(t, p)
			if xs[i].Sign() == 0 {
				xs[i] = big.NewInt(1)
			}
		}
		inv := InvertBatch[*big.Int](f, xs)
		if f.inversions != 1 {
			t.Fatalf("n=%d: expected 1 inversion, got %d", n, f.inversions)
		}
		for i := range xs {
			want := new(big.Int).ModInverse(xs[i], p)
			assert.Equal(t, 0, want.Cmp(inv[i]), "element %d", i)
		}
	}
}

func TestInvertBatchZero(t *testing.T) {
	f := NewPrime(big.NewInt(101))
	xs := []*big.Int{big.NewInt(3), big.NewInt(0), big.NewInt(7)}

	assert.Panics(t, func() { InvertBatch[*big.Int](f, xs) })

	out := InvertBatchPassZero[*big.Int](f, xs)
	assert.Equal(t, int64(34), out[0].Int64()) // 3 * 34 = 102 = 1 mod 101
	assert.Equal(t, int64(0), out[1].Int64())
	assert.Equal(t, int64(29), out[2].Int64()) // 7 * 29 = 203 = 1 mod 101
}

func TestPrimeSqrtShapes(t *testing.T) {
	primes := map[string]*big.Int{
		"3 mod 4": secp256k1.S256().P,
		"5 mod 8": curve25519P,
		"1 mod 8": secp256k1.S256().N, // n = 1 mod 8 exercises Tonelli-Shanks
		"small":   big.NewInt(73),     // 73 = 1 mod 8
	}
	for name, p := range primes {
		t.Run(name, func(t *testing.T) {
			f := NewPrime(p)
			for i := 0; i < 20; i++ {
				x := randElement(t, p)
				sq := f.Sqr(x)
				r := f.Sqrt(sq)
				require.True(t, r.IsValid)
				assert.True(t, f.Equal(f.Sqr(r.Value), sq))

				want := new(big.Int).ModSqrt(x, p)
				got := f.Sqrt(x)
				assert.Equal(t, want != nil, got.IsValid)
			}
		})
	}
}

func TestPrimeEncoding(t *testing.T) {
	p := curve25519P
	be := NewPrime(p)
	le := NewPrime(p, WithLittleEndian())

	x := big.NewInt(0x0102)
	assert.Equal(t, byte(0x02), be.Encode(x)[31])
	assert.Equal(t, byte(0x02), le.Encode(x)[0])

	got, err := le.Decode(le.Encode(x))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(x))

	_, err = be.Decode(p.FillBytes(make([]byte, 32)))
	assert.True(t, errors.Is(err, ErrNotCanonical))

	_, err = be.Decode([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalidLength))
}

func TestPrimeCMov(t *testing.T) {
	f := NewPrime(big.NewInt(1009))
	a, b := big.NewInt(5), big.NewInt(900)
	assert.Equal(t, int64(5), f.CMov(a, b, false).Int64())
	assert.Equal(t, int64(900), f.CMov(a, b, true).Int64())
}

// checkAgainstPrime runs the same random operations on a provider and on
// the math/big reference and compares the encodings.
func checkAgainstPrime[T any](t *testing.T, f Field[T], ref *Prime) {
	t.Helper()
	p := f.Order()
	require.Equal(t, 0, p.Cmp(ref.Order()))
	for i := 0; i < 32; i++ {
		x, y := randElement(t, p), randElement(t, p)
		a, b := f.FromBig(x), f.FromBig(y)

		pairs := []struct {
			name string
			got  T
			want *big.Int
		}{
			{"add", f.Add(a, b), ref.Add(x, y)},
			{"sub", f.Sub(a, b), ref.Sub(x, y)},
			{"neg", f.Neg(a), ref.Neg(x)},
			{"mul", f.Mul(a, b), ref.Mul(x, y)},
			{"sqr", f.Sqr(a), ref.Sqr(x)},
			{"inv", f.Inv(a), ref.Inv(x)},
			{"div", f.Div(a, b), ref.Div(x, y)},
			{"pow", f.Pow(a, y), ref.Pow(x, y)},
			{"cmov", f.CMov(a, b, i%2 == 0), ref.CMov(x, y, i%2 == 0)},
		}
		for _, pc := range pairs {
			if !f.Equal(pc.got, f.FromBig(pc.want)) {
				t.Fatalf("%s mismatch for x=%x y=%x", pc.name, x, y)
			}
		}
		assert.Equal(t, x.Bit(0) == 1, f.IsOdd(a))

		s := f.Sqrt(f.Sqr(a))
		require.True(t, s.IsValid)
		assert.True(t, f.Equal(f.Sqr(s.Value), f.Sqr(a)))

		dec, err := f.Decode(f.Encode(a))
		require.NoError(t, err)
		assert.True(t, f.Equal(dec, a))
	}
	assert.True(t, f.IsZero(f.Inv(f.Zero())))
	assert.True(t, f.Equal(f.Mul(f.One(), f.FromUint64(7)), f.FromUint64(7)))
}

func TestSecp256k1Field(t *testing.T) {
	checkAgainstPrime[secp256k1.FieldVal](t, Secp256k1{}, NewPrime(secp256k1.S256().P))

	f := Secp256k1{}
	_, err := f.Decode(secp256k1.S256().P.FillBytes(make([]byte, 32)))
	assert.True(t, errors.Is(err, ErrNotCanonical))
}

func TestCurve25519Field(t *testing.T) {
	checkAgainstPrime[fe.Element](t, Curve25519{}, NewPrime(curve25519P, WithLittleEndian()))

	f := Curve25519{}
	// p = 5 mod 8: -1 is a square and 2 is not
	minusOne := f.Neg(f.One())
	root := f.Sqrt(minusOne)
	require.True(t, root.IsValid)
	assert.True(t, f.Equal(f.Mul(root.Value, root.Value), minusOne))
	assert.False(t, f.Sqrt(f.FromUint64(2)).IsValid)

	// p itself is a non-canonical encoding of zero
	enc := curve25519P.FillBytes(make([]byte, 32))
	reverse(enc)
	_, err := f.Decode(enc)
	assert.True(t, errors.Is(err, ErrNotCanonical))
	loose, err := f.DecodeLoose(enc)
	require.NoError(t, err)
	assert.True(t, f.IsZero(loose))
}

func TestBLS12381Field(t *testing.T) {
	checkAgainstPrime[fp.Element](t, BLS12381{}, NewPrime(fp.Modulus()))

	f := BLS12381{}
	assert.Equal(t, 48, f.ByteLen())
	half := new(big.Int).Rsh(fp.Modulus(), 1)
	assert.False(t, f.LexicographicallyLargest(f.FromBig(half)))
	assert.True(t, f.LexicographicallyLargest(f.FromBig(new(big.Int).Add(half, big.NewInt(1)))))
}

func TestLegendre(t *testing.T) {
	f := NewPrime(big.NewInt(23))
	assert.Equal(t, 0, Legendre[*big.Int](f, big.NewInt(0)))
	assert.Equal(t, 1, Legendre[*big.Int](f, big.NewInt(4)))
	assert.Equal(t, -1, Legendre[*big.Int](f, big.NewInt(5)))
	assert.True(t, IsSquare[*big.Int](f, big.NewInt(9)))
}
