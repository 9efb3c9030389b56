package geomtype

import "math"

// Axis is one dimension of an Envelope: a presence flag plus a (min, max)
// pair.
type Axis struct {
	Present bool
	Min     float64
	Max     float64
}

// Envelope is the 4-axis bounding-box record (C4). Initial state (see
// Init) has every flag false and min/max set to +Inf/-Inf sentinels so
// that the first accumulated coordinate always widens the range.
type Envelope struct {
	X, Y, Z, M Axis
	// Empty is true iff no non-sentinel coordinate was ever accumulated.
	Empty bool
}

// NaN is the shared not-a-number sentinel used for axes of an empty
// geometry after Finalize.
var NaN = math.NaN()

// Init resets e to the initial accumulation state.
func Init(e *Envelope) {
	*e = Envelope{}
	e.X = Axis{Min: math.Inf(1), Max: math.Inf(-1)}
	e.Y = Axis{Min: math.Inf(1), Max: math.Inf(-1)}
	e.Z = Axis{Min: math.Inf(1), Max: math.Inf(-1)}
	e.M = Axis{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Widen updates axis a's min/max to include v and marks it present.
func (a *Axis) Widen(v float64) {
	a.Present = true
	if v < a.Min {
		a.Min = v
	}
	if v > a.Max {
		a.Max = v
	}
}
