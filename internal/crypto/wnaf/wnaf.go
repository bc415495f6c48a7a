// Package wnaf implements windowed non-adjacent form scalar multiplication
// with per-point precomputed tables.
//
// A table for window size W holds 2^(W-1) multiples for each of
// ceil(bits/W)+1 windows. Multiply walks every window and, for windows
// whose digit is zero, adds a table entry to a throwaway accumulator so
// the sequence of group operations does not depend on the scalar.
package wnaf

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrInvalidWindow is returned for window sizes outside [1, 16].
var ErrInvalidWindow = errors.New("wnaf: invalid window size")

var log = logrus.WithField("pkg", "wnaf")

// Group is the point arithmetic the engine relies on. Points must be
// immutable and comparable so they can key the table cache.
type Group[P comparable] interface {
	Zero() P
	Add(a, b P) P
	Double(a P) P
	Negate(a P) P
	// CNegate returns -a when c is set, without branching on c.
	CNegate(a P, c bool) P
}

type key[P comparable] struct {
	point  P
	window int
}

type table[P comparable] struct {
	once   sync.Once
	points []P
}

// Engine multiplies points of one group by scalars of a fixed bit length.
// It owns the precomputed tables of every point registered with
// Precompute; all methods are safe for concurrent use.
type Engine[P comparable] struct {
	group Group[P]
	bits  int

	windows sync.Map // P -> int
	tables  sync.Map // key[P] -> *table[P]

	// OnTable, when set, is called after a table is built.
	OnTable func(window, size int)
}

// New returns an engine for scalars of the given bit length.
func New[P comparable](group Group[P], bits int) *Engine[P] {
	return &Engine[P]{group: group, bits: bits}
}

type opts struct {
	windows    int
	windowSize int
	mask       *big.Int
	maxNumber  int
	shiftBy    uint
}

func (e *Engine[P]) opts(w int) opts {
	return opts{
		windows:    (e.bits+w-1)/w + 1,
		windowSize: 1 << (w - 1),
		mask:       big.NewInt(int64(1<<w) - 1),
		maxNumber:  1 << w,
		shiftBy:    uint(w),
	}
}

// SetWindow registers p for window size w. Its table is built on the
// first multiplication.
func (e *Engine[P]) SetWindow(p P, w int) error {
	if w < 1 || w > 16 {
		return errors.Wrapf(ErrInvalidWindow, "%d", w)
	}
	e.windows.Store(p, w)
	return nil
}

// Precompute registers p for window size w and builds its table
// eagerly. Later multiplications of p use the table.
func (e *Engine[P]) Precompute(p P, w int) error {
	if err := e.SetWindow(p, w); err != nil {
		return err
	}
	e.table(p, w)
	return nil
}

// HasTable reports whether p was registered with Precompute.
func (e *Engine[P]) HasTable(p P) bool {
	_, ok := e.windows.Load(p)
	return ok
}

// Window returns the window size registered for p, or 1.
func (e *Engine[P]) Window(p P) int {
	if w, ok := e.windows.Load(p); ok {
		return w.(int)
	}
	return 1
}

// table returns the cached table for p, building it at most once. Points
// that were never registered get an uncached table.
func (e *Engine[P]) table(p P, w int) []P {
	if _, ok := e.windows.Load(p); !ok {
		return e.precomputeWindow(p, w)
	}
	v, _ := e.tables.LoadOrStore(key[P]{point: p, window: w}, &table[P]{})
	t := v.(*table[P])
	t.once.Do(func() {
		t.points = e.precomputeWindow(p, w)
		log.WithFields(logrus.Fields{"window": w, "size": len(t.points)}).Debug("wnaf table built")
		if e.OnTable != nil {
			e.OnTable(w, len(t.points))
		}
	})
	return t.points
}

func (e *Engine[P]) precomputeWindow(p P, w int) []P {
	o := e.opts(w)
	points := make([]P, 0, o.windows*o.windowSize)
	cur := p
	for window := 0; window < o.windows; window++ {
		base := cur
		points = append(points, base)
		for i := 1; i < o.windowSize; i++ {
			base = e.group.Add(base, cur)
			points = append(points, base)
		}
		cur = e.group.Double(base)
	}
	return points
}

type offsets struct {
	offset  int
	offsetF int
	isZero  bool
	isNeg   bool
	isNegF  bool
}

// nextWindow consumes the lowest W bits of n, recoding digits above
// 2^(W-1) as negative ones with a carry into the remaining scalar.
func nextWindow(n *big.Int, window int, o opts) offsets {
	wbits := int(new(big.Int).And(n, o.mask).Int64())
	n.Rsh(n, o.shiftBy)
	if wbits > o.windowSize {
		wbits -= o.maxNumber
		n.Add(n, big.NewInt(1))
	}
	start := window * o.windowSize
	abs := wbits
	if abs < 0 {
		abs = -abs
	}
	return offsets{
		offset:  start + abs - 1,
		offsetF: start,
		isZero:  wbits == 0,
		isNeg:   wbits < 0,
		isNegF:  window%2 != 0,
	}
}

// Multiply returns k·p and a decoy point accumulated from the zero
// windows. k must be non-negative and fit the engine's bit length.
func (e *Engine[P]) Multiply(p P, k *big.Int) (P, P) {
	w := e.Window(p)
	pre := e.table(p, w)
	o := e.opts(w)
	n := new(big.Int).Set(k)

	acc := e.group.Zero()
	fake := pre[0]
	for window := 0; window < o.windows; window++ {
		off := nextWindow(n, window, o)
		if off.isZero {
			fake = e.group.Add(fake, e.group.CNegate(pre[off.offsetF], off.isNegF))
		} else {
			acc = e.group.Add(acc, e.group.CNegate(pre[off.offset], off.isNeg))
		}
	}
	if n.Sign() != 0 {
		panic("wnaf: scalar wider than the table")
	}
	return acc, fake
}

// MultiplyUnsafe returns acc + k·p, skipping zero windows. It leaks the
// scalar through timing and must only see public scalars.
func (e *Engine[P]) MultiplyUnsafe(p P, k *big.Int, acc P) P {
	w := e.Window(p)
	pre := e.table(p, w)
	o := e.opts(w)
	n := new(big.Int).Set(k)
	for window := 0; window < o.windows; window++ {
		if n.Sign() == 0 {
			break
		}
		off := nextWindow(n, window, o)
		if off.isZero {
			continue
		}
		item := pre[off.offset]
		if off.isNeg {
			item = e.group.Negate(item)
		}
		acc = e.group.Add(acc, item)
	}
	if n.Sign() != 0 {
		panic("wnaf: scalar wider than the table")
	}
	return acc
}

// MultiplyDoubleAdd is the plain variable-time double-and-add ladder used
// for points without a table.
func MultiplyDoubleAdd[P comparable](g Group[P], p P, k *big.Int) P {
	acc := g.Zero()
	d := p
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			acc = g.Add(acc, d)
		}
		d = g.Double(d)
	}
	return acc
}
