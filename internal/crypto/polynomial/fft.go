package polynomial

import (
	"math/big"
	"math/bits"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/crypto/field"
)

// ErrDomainSize is returned for sizes that are not a power of two or
// exceed the two-adicity of the field.
var ErrDomainSize = errors.New("polynomial: unsupported FFT size")

var log = logrus.WithField("pkg", "polynomial")

// Domain holds the power-of-two roots of unity of a prime field and
// caches the derived tables per size.
type Domain struct {
	f      *field.Prime
	maxLog int
	// omegas[i] is a primitive 2^i-th root of unity
	omegas []*big.Int

	mu      sync.Mutex
	roots   map[int][]*big.Int
	brp     map[int][]*big.Int
	inverse map[int][]*big.Int
}

// NewDomain factors p - 1 = q·2^s and derives the roots from generator,
// which must be a quadratic non-residue. A nil generator selects the
// smallest non-residue.
func NewDomain(f *field.Prime, generator *big.Int) (*Domain, error) {
	p := f.Order()
	odd := new(big.Int).Sub(p, big.NewInt(1))
	s := 0
	for odd.Bit(0) == 0 {
		odd.Rsh(odd, 1)
		s++
	}
	g := generator
	if g == nil {
		half := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
		for g = big.NewInt(2); f.Equal(f.Pow(g, half), f.One()); g = new(big.Int).Add(g, big.NewInt(1)) {
		}
	} else if field.IsSquare[*big.Int](f, f.FromBig(g)) {
		return nil, errors.Wrap(ErrDomainSize, "generator is a quadratic residue")
	}
	omegas := make([]*big.Int, s+1)
	omegas[s] = f.Pow(f.FromBig(g), odd)
	for i := s; i > 0; i-- {
		omegas[i-1] = f.Sqr(omegas[i])
	}
	log.WithFields(logrus.Fields{"twoAdicity": s, "generator": g}).Debug("FFT domain created")
	return &Domain{
		f:       f,
		maxLog:  s,
		omegas:  omegas,
		roots:   make(map[int][]*big.Int),
		brp:     make(map[int][]*big.Int),
		inverse: make(map[int][]*big.Int),
	}, nil
}

// Field returns the field of the domain.
func (d *Domain) Field() *field.Prime { return d.f }

// MaxLog returns the two-adicity s of the field.
func (d *Domain) MaxLog() int { return d.maxLog }

func (d *Domain) checkLog(logN int) error {
	if logN < 0 || logN > d.maxLog || logN > 31 {
		return errors.Wrapf(ErrDomainSize, "2^%d with two-adicity %d", logN, d.maxLog)
	}
	return nil
}

// Omega returns a primitive 2^logN-th root of unity.
func (d *Domain) Omega(logN int) (*big.Int, error) {
	if err := d.checkLog(logN); err != nil {
		return nil, err
	}
	return d.omegas[logN], nil
}

func (d *Domain) rootsLocked(logN int) []*big.Int {
	if r, ok := d.roots[logN]; ok {
		return r
	}
	n := 1 << logN
	r := make([]*big.Int, n)
	cur := d.f.One()
	for j := 0; j < n; j++ {
		r[j] = cur
		cur = d.f.Mul(cur, d.omegas[logN])
	}
	d.roots[logN] = r
	return r
}

// Roots returns ω^0, ..., ω^(N-1) for N = 2^logN.
func (d *Domain) Roots(logN int) ([]*big.Int, error) {
	if err := d.checkLog(logN); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rootsLocked(logN), nil
}

// BitReversedRoots returns Roots(logN) in bit-reversed order.
func (d *Domain) BitReversedRoots(logN int) ([]*big.Int, error) {
	if err := d.checkLog(logN); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.brp[logN]; ok {
		return r, nil
	}
	r := BitReversal(d.rootsLocked(logN))
	d.brp[logN] = r
	return r, nil
}

// InverseRoots returns the inverses of Roots(logN).
func (d *Domain) InverseRoots(logN int) ([]*big.Int, error) {
	if err := d.checkLog(logN); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.inverse[logN]; ok {
		return r, nil
	}
	r := field.InvertBatch[*big.Int](d.f, d.rootsLocked(logN))
	d.inverse[logN] = r
	return r, nil
}

// IsPowerOfTwo reports whether n = 2^k for some k >= 0.
func IsPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// NextPowerOfTwo returns the smallest power of two not below n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func log2(n int) int { return bits.Len(uint(n)) - 1 }

func reverseBits(v uint, width int) uint {
	return bits.Reverse(v) >> (bits.UintSize - width)
}

// BitReversal returns a copy of values permuted by bit-reversed index.
// len(values) must be a power of two.
func BitReversal(values []*big.Int) []*big.Int {
	out := append([]*big.Int{}, values...)
	n := len(out)
	if n < 2 {
		return out
	}
	w := log2(n)
	for i := 0; i < n; i++ {
		j := int(reverseBits(uint(i), w))
		if i < j {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// butterflies runs the decimation-in-time network over bit-reversed
// input using the given table of powers of the root.
func (d *Domain) butterflies(values, roots []*big.Int) []*big.Int {
	f := d.f
	n := len(values)
	out := BitReversal(values)
	for m := 2; m <= n; m <<= 1 {
		half := m >> 1
		stride := n / m
		for k := 0; k < n; k += m {
			for j := 0; j < half; j++ {
				t := f.Mul(out[k+j+half], roots[j*stride])
				a := out[k+j]
				out[k+j] = f.Add(a, t)
				out[k+j+half] = f.Sub(a, t)
			}
		}
	}
	return out
}

func (d *Domain) prepare(values []*big.Int) (int, error) {
	if !IsPowerOfTwo(len(values)) {
		return 0, errors.Wrapf(ErrDomainSize, "length %d is not a power of two", len(values))
	}
	logN := log2(len(values))
	return logN, d.checkLog(logN)
}

// FFT evaluates the polynomial with coefficients values at every power
// of the 2^k-th root of unity, k = log2(len(values)).
func (d *Domain) FFT(values []*big.Int) ([]*big.Int, error) {
	logN, err := d.prepare(values)
	if err != nil {
		return nil, err
	}
	roots, err := d.Roots(logN)
	if err != nil {
		return nil, err
	}
	return d.butterflies(reduceAll(d.f, values), roots), nil
}

// InverseFFT interpolates evaluations back into coefficients, scaling
// by 1/N.
func (d *Domain) InverseFFT(values []*big.Int) ([]*big.Int, error) {
	logN, err := d.prepare(values)
	if err != nil {
		return nil, err
	}
	inv, err := d.InverseRoots(logN)
	if err != nil {
		return nil, err
	}
	out := d.butterflies(reduceAll(d.f, values), inv)
	nInv := d.f.Inv(d.f.FromUint64(uint64(len(values))))
	for i := range out {
		out[i] = d.f.Mul(out[i], nInv)
	}
	return out, nil
}

func reduceAll(f *field.Prime, values []*big.Int) []*big.Int {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = f.FromBig(v)
	}
	return out
}

// Mul returns p·q through pointwise multiplication of their FFTs.
func (d *Domain) Mul(p, q *Polynomial) (*Polynomial, error) {
	f := d.f
	if p.Field.Order().Cmp(f.Order()) != 0 || q.Field.Order().Cmp(f.Order()) != 0 {
		return nil, ErrMixedFields
	}
	a, b := p.Normalize(), q.Normalize()
	size := NextPowerOfTwo(len(a.Coefficients) + len(b.Coefficients) - 1)
	pad := func(c []*big.Int) []*big.Int {
		out := make([]*big.Int, size)
		copy(out, c)
		for i := len(c); i < size; i++ {
			out[i] = f.Zero()
		}
		return out
	}
	fa, err := d.FFT(pad(a.Coefficients))
	if err != nil {
		return nil, err
	}
	fb, err := d.FFT(pad(b.Coefficients))
	if err != nil {
		return nil, err
	}
	for i := range fa {
		fa[i] = f.Mul(fa[i], fb[i])
	}
	coeffs, err := d.InverseFFT(fa)
	if err != nil {
		return nil, err
	}
	return (&Polynomial{Coefficients: coeffs, Field: f}).Normalize(), nil
}
