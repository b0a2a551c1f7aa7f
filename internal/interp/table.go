// Package interp turns sparse empirical tables into continuous functions.
//
// Three operations are provided and they are deliberately not merged:
//
//   - Table.Lookup clamps keys outside the table domain to the end samples.
//   - the interior step between two bracketing samples (unexported).
//   - Segment is the exact two-point formula with no clamping at all.
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyTable        = errors.New("table has no samples")
	ErrUnsortedTable     = errors.New("table samples must be strictly increasing in x")
	ErrDegenerateSegment = errors.New("segment endpoints share the same x")
)

// Sample is one (x, y) row of an empirical table.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table is an immutable, strictly ascending sequence of samples.
//
// The zero Table is not usable; build one with NewTable or MustTable.
type Table struct {
	samples []Sample
}

// NewTable validates samples and returns a Table that owns a private copy.
func NewTable(samples ...Sample) (Table, error) {
	if len(samples) == 0 {
		return Table{}, ErrEmptyTable
	}
	for i := range samples {
		if math.IsNaN(samples[i].X) || math.IsInf(samples[i].X, 0) {
			return Table{}, fmt.Errorf("sample %d: x must be finite", i)
		}
		if i > 0 && samples[i].X <= samples[i-1].X {
			return Table{}, fmt.Errorf("%w (index %d)", ErrUnsortedTable, i)
		}
	}
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return Table{samples: cp}, nil
}

// MustTable is NewTable for package-level constant data. It panics on invalid input.
func MustTable(samples ...Sample) Table {
	t, err := NewTable(samples...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Table) Len() int { return len(t.samples) }

// Samples returns a copy of the table rows.
func (t Table) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Domain returns the first and last x values.
func (t Table) Domain() (lo, hi float64) {
	if len(t.samples) == 0 {
		return 0, 0
	}
	return t.samples[0].X, t.samples[len(t.samples)-1].X
}

// Lookup returns the table value at key.
//
// Keys at or below the first sample return the first y, keys at or above the
// last sample return the last y. A NaN key is treated as below the table.
// Lookup on the zero Table returns 0.
func (t Table) Lookup(key float64) float64 {
	n := len(t.samples)
	if n == 0 {
		return 0
	}
	first, last := t.samples[0], t.samples[n-1]
	if key <= first.X || math.IsNaN(key) {
		return first.Y
	}
	if key >= last.X {
		return last.Y
	}

	// First sample whose x exceeds key; clamps above guarantee 0 < idx < n.
	idx := sort.Search(n, func(i int) bool { return t.samples[i].X > key })
	return between(t.samples[idx-1], t.samples[idx], key)
}

// between interpolates inside a bracket the table already proved non-degenerate.
func between(lo, hi Sample, key float64) float64 {
	return lo.Y + (hi.Y-lo.Y)*(key-lo.X)/(hi.X-lo.X)
}

// Segment interpolates (or extrapolates) on the line through (x0, y0) and
// (x1, y1). There is no clamping: callers that need x inside [x0, x1] must
// guarantee it themselves.
func Segment(x0, y0, x1, y1, x float64) (float64, error) {
	if x1 == x0 {
		return 0, ErrDegenerateSegment
	}
	return between(Sample{X: x0, Y: y0}, Sample{X: x1, Y: y1}, x), nil
}
