package envelope

import (
	"math"
	"testing"

	"github.com/atlasdatatech/gpkggeom/geomtype"
)

func TestLinearEnvelope(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.LineString, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.Coordinates(h, 3, []float64{0, 0, 5, -2, 10, 7}, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if env.Empty {
		t.Fatal("non-empty geometry reported empty")
	}
	if env.X.Min != 0 || env.X.Max != 10 {
		t.Errorf("X = [%v, %v], want [0, 10]", env.X.Min, env.X.Max)
	}
	if env.Y.Min != -2 || env.Y.Max != 7 {
		t.Errorf("Y = [%v, %v], want [-2, 7]", env.Y.Min, env.Y.Max)
	}
	if env.Z.Present || env.M.Present {
		t.Error("XY geometry must not mark Z or M present")
	}
}

// TestCircularStringCrestsNorth is the S6 scenario from spec.md §8: a
// semicircular arc from (0,0) through (1,1) to (2,0) crests above the line
// joining its endpoints, so the envelope's Y max must be the arc's apex
// (1), not max(0, 0) from the endpoints alone.
func TestCircularStringCrestsNorth(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.CircularString, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.Coordinates(h, 3, []float64{0, 0, 1, 1, 2, 0}, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if env.X.Min != 0 || env.X.Max != 2 {
		t.Errorf("X = [%v, %v], want [0, 2]", env.X.Min, env.X.Max)
	}
	if env.Y.Min != 0 || env.Y.Max != 1 {
		t.Errorf("Y = [%v, %v], want [0, 1] (arc crests at the apex)", env.Y.Min, env.Y.Max)
	}
}

// TestCircularStringDipsSouth mirrors the crest scenario with a concave
// arc, so the cardinal-point widening must also catch a southward dip.
func TestCircularStringDipsSouth(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.CircularString, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.Coordinates(h, 3, []float64{0, 0, 1, -1, 2, 0}, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if env.Y.Min != -1 || env.Y.Max != 0 {
		t.Errorf("Y = [%v, %v], want [-1, 0]", env.Y.Min, env.Y.Max)
	}
}

// TestIdenticalControlPointsDegenerateToPoint exercises the zero-radius
// guard of threePointCircle: three coincident control points contribute no
// arc extrema beyond the (single) point itself.
func TestIdenticalControlPointsDegenerateToPoint(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.CircularString, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.Coordinates(h, 3, []float64{5, 5, 5, 5, 5, 5}, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if env.X.Min != 5 || env.X.Max != 5 || env.Y.Min != 5 || env.Y.Max != 5 {
		t.Errorf("envelope = X[%v,%v] Y[%v,%v], want X[5,5] Y[5,5]",
			env.X.Min, env.X.Max, env.Y.Min, env.Y.Max)
	}
}

// TestMultiArcCircularString chains two arc triplets sharing a midpoint
// point, as WKB/WKT deliver in a single Coordinates batch.
func TestMultiArcCircularString(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.CircularString, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	// Arc 1: (0,0)->(1,1)->(2,0); Arc 2: (2,0)->(3,-1)->(4,0).
	coords := []float64{0, 0, 1, 1, 2, 0, 3, -1, 4, 0}
	if err := a.Coordinates(h, 5, coords, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if env.X.Min != 0 || env.X.Max != 4 {
		t.Errorf("X = [%v, %v], want [0, 4]", env.X.Min, env.X.Max)
	}
	if env.Y.Min != -1 || env.Y.Max != 1 {
		t.Errorf("Y = [%v, %v], want [-1, 1]", env.Y.Min, env.Y.Max)
	}
}

func TestEmptyGeometryEnvelope(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.Point, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	// No Coordinates call: an empty point contributes nothing.
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if !env.Empty {
		t.Fatal("expected Empty to be set")
	}
	if !math.IsNaN(env.X.Min) || !math.IsNaN(env.X.Max) {
		t.Errorf("X = [%v, %v], want [NaN, NaN]", env.X.Min, env.X.Max)
	}
	if !math.IsNaN(env.Y.Min) || !math.IsNaN(env.Y.Max) {
		t.Errorf("Y = [%v, %v], want [NaN, NaN]", env.Y.Min, env.Y.Max)
	}
}

func TestAllNaNPointWidensNothing(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.Point, geomtype.XY)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.Coordinates(h, 1, []float64{math.NaN(), math.NaN()}, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}
	if !a.Env.Empty {
		t.Error("an all-NaN coordinate batch must still finalize as empty")
	}
}

func TestZMAxesPresence(t *testing.T) {
	a := NewAccumulator()
	h := geomtype.NewHeader(geomtype.Point, geomtype.XYZM)
	if err := a.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := a.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.Coordinates(h, 1, []float64{1, 2, 3, 4}, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := a.End(); err != nil {
		t.Fatal(err)
	}

	env := a.Env
	if !env.Z.Present || env.Z.Min != 3 || env.Z.Max != 3 {
		t.Errorf("Z = %+v, want present [3, 3]", env.Z)
	}
	if !env.M.Present || env.M.Min != 4 || env.M.Max != 4 {
		t.Errorf("M = %+v, want present [4, 4]", env.M)
	}
}
