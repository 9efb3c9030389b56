// Package envelope implements the 4-axis bounding-box accumulation engine
// (C5), including the arc-aware extrema computation for CircularString
// geometries described in spec.md §4.4.
package envelope

import (
	"github.com/atlasdatatech/gpkggeom/geomtype"
)

// Accumulator is a geomtype.Consumer that widens an Envelope as
// coordinates are streamed to it. It is the canonical sink used to
// compute a geometry's bounding box without building an intermediate
// tree, and the one the blob writer embeds to compute its header.
type Accumulator struct {
	geomtype.BaseConsumer
	Env Envelope
}

// Envelope is an alias so callers in this package don't need to import
// geomtype directly for the common case.
type Envelope = geomtype.Envelope

var _ geomtype.Consumer = (*Accumulator)(nil)

// NewAccumulator returns an Accumulator with the envelope initialized to
// the empty-accumulation sentinel state.
func NewAccumulator() *Accumulator {
	a := &Accumulator{}
	geomtype.Init(&a.Env)
	return a
}

// Begin resets the envelope to the initial sentinel state.
func (a *Accumulator) Begin() error {
	geomtype.Init(&a.Env)
	return nil
}

// BeginGeometry marks which axes participate, per spec.md §4.4: X/Y
// always, Z for XYZ/XYZM, M for XYM/XYZM. It is safe to call repeatedly
// since a geometry tree has one coordinate type throughout (spec.md §3).
func (a *Accumulator) BeginGeometry(h geomtype.Header) error {
	a.Env.X.Present = true
	a.Env.Y.Present = true
	if h.Coord.HasZ() {
		a.Env.Z.Present = true
	}
	if h.Coord.HasM() {
		a.Env.M.Present = true
	}
	return nil
}

// Coordinates dispatches to the arc-aware branch for CircularString
// headers, otherwise walks coordinates and widens each present axis.
func (a *Accumulator) Coordinates(h geomtype.Header, pointCount int, coords []float64, skip int) error {
	if h.Type == geomtype.CircularString {
		return a.fillArc(h, pointCount, coords)
	}
	return a.fillLinear(h, pointCount, coords)
}

// End finalizes the envelope: if X or Y range remains (+Inf, -Inf) the
// geometry is empty, so all min/max are set to the NaN sentinel and Empty
// is set.
func (a *Accumulator) End() error {
	Finalize(&a.Env)
	return nil
}

// Finalize applies spec.md §4.4's empty-geometry rule to e in place.
func Finalize(e *Envelope) {
	if e.X.Min > e.X.Max || e.Y.Min > e.Y.Max {
		e.Empty = true
		nanAxis := func(ax *geomtype.Axis) {
			if ax.Present {
				ax.Min = geomtype.NaN
				ax.Max = geomtype.NaN
			}
		}
		nanAxis(&e.X)
		nanAxis(&e.Y)
		nanAxis(&e.Z)
		nanAxis(&e.M)
	}
}

func zIndex(c geomtype.CoordType) int {
	if c.HasZ() {
		return 2
	}
	return -1
}

func mIndex(c geomtype.CoordType) int {
	if c == geomtype.XYZM {
		return 3
	}
	if c == geomtype.XYM {
		return 2
	}
	return -1
}

func (a *Accumulator) fillLinear(h geomtype.Header, pointCount int, coords []float64) error {
	stride := h.Ordinates
	zi := zIndex(h.Coord)
	mi := mIndex(h.Coord)
	for p := 0; p < pointCount; p++ {
		base := p * stride
		x, y := coords[base], coords[base+1]
		// An all-NaN point (an empty Point) contributes nothing.
		if isNaN(x) && isNaN(y) {
			continue
		}
		a.Env.X.Widen(x)
		a.Env.Y.Widen(y)
		if zi >= 0 {
			a.Env.Z.Widen(coords[base+zi])
		}
		if mi >= 0 {
			a.Env.M.Widen(coords[base+mi])
		}
	}
	return nil
}

func (a *Accumulator) fillArc(h geomtype.Header, pointCount int, coords []float64) error {
	stride := h.Ordinates
	zi := zIndex(h.Coord)
	mi := mIndex(h.Coord)

	// Z/M are accumulated as plain min/max over every ordinate supplied;
	// only X/Y get arc-aware treatment.
	for p := 0; p < pointCount; p++ {
		base := p * stride
		if zi >= 0 {
			a.Env.Z.Widen(coords[base+zi])
		}
		if mi >= 0 {
			a.Env.M.Widen(coords[base+mi])
		}
	}

	point := func(i int) [2]float64 {
		base := i * stride
		return [2]float64{coords[base], coords[base+1]}
	}

	for i := 0; i+2 < pointCount; i += 2 {
		p1, p2, p3 := point(i), point(i+1), point(i+2)
		a.Env.X.Widen(p1[0])
		a.Env.Y.Widen(p1[1])
		a.Env.X.Widen(p3[0])
		a.Env.Y.Widen(p3[1])

		centre, r := threePointCircle(p1, p2, p3)
		if r == 0 {
			continue
		}
		start := angleDeg(centre, p1)
		mid := angleDeg(centre, p2)
		end := angleDeg(centre, p3)
		arc := sweepArc(start, mid, end)

		for _, cp := range cardinalPoints(centre, r) {
			if arcContains(cp.angle, start, arc) {
				a.Env.X.Widen(cp.pt[0])
				a.Env.Y.Widen(cp.pt[1])
			}
		}
	}
	return nil
}

func isNaN(f float64) bool { return f != f }
