package foreign

import (
	"testing"

	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/go-spatial/geom"
	"github.com/pkg/errors"
)

func roundTrip(t *testing.T, g geom.Geometry) geom.Geometry {
	t.Helper()
	raw, err := ToBlob(g, blob.GeoPackage, 4326)
	if err != nil {
		t.Fatalf("ToBlob: %v", err)
	}
	out, err := FromBlob(raw, blob.GeoPackage)
	if err != nil {
		t.Fatalf("FromBlob: %v", err)
	}
	return out
}

func TestRoundTripPoint(t *testing.T) {
	got := roundTrip(t, geom.Point{1, 2})
	p, ok := got.(geom.Point)
	if !ok {
		t.Fatalf("got %T, want geom.Point", got)
	}
	if p[0] != 1 || p[1] != 2 {
		t.Errorf("got %v, want {1 2}", p)
	}
}

func TestRoundTripLineString(t *testing.T) {
	ls := geom.LineString{{0, 0}, {1, 1}, {2, 0}}
	got := roundTrip(t, ls)
	out, ok := got.(geom.LineString)
	if !ok {
		t.Fatalf("got %T, want geom.LineString", got)
	}
	if len(out) != len(ls) {
		t.Fatalf("got %d points, want %d", len(out), len(ls))
	}
	for i := range ls {
		if out[i] != ls[i] {
			t.Errorf("point %d = %v, want %v", i, out[i], ls[i])
		}
	}
}

func TestRoundTripPolygon(t *testing.T) {
	poly := geom.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}},
	}
	got := roundTrip(t, poly)
	out, ok := got.(geom.Polygon)
	if !ok {
		t.Fatalf("got %T, want geom.Polygon", got)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rings, want 2", len(out))
	}
	if len(out[0]) != 5 || len(out[1]) != 5 {
		t.Errorf("ring lengths = %d, %d, want 5, 5", len(out[0]), len(out[1]))
	}
}

func TestRoundTripMultiPoint(t *testing.T) {
	mp := geom.MultiPoint{{0, 0}, {1, 1}, {2, 2}}
	got := roundTrip(t, mp)
	out, ok := got.(geom.MultiPoint)
	if !ok {
		t.Fatalf("got %T, want geom.MultiPoint", got)
	}
	if len(out) != 3 {
		t.Errorf("got %d points, want 3", len(out))
	}
}

func TestRoundTripMultiLineString(t *testing.T) {
	mls := geom.MultiLineString{
		{{0, 0}, {1, 1}},
		{{5, 5}, {6, 6}, {7, 5}},
	}
	got := roundTrip(t, mls)
	out, ok := got.(geom.MultiLineString)
	if !ok {
		t.Fatalf("got %T, want geom.MultiLineString", got)
	}
	if len(out) != 2 {
		t.Fatalf("got %d members, want 2", len(out))
	}
}

func TestRoundTripMultiPolygon(t *testing.T) {
	mpoly := geom.MultiPolygon{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		{{{10, 10}, {11, 10}, {11, 11}, {10, 11}, {10, 10}}},
	}
	got := roundTrip(t, mpoly)
	out, ok := got.(geom.MultiPolygon)
	if !ok {
		t.Fatalf("got %T, want geom.MultiPolygon", got)
	}
	if len(out) != 2 {
		t.Errorf("got %d polygons, want 2", len(out))
	}
}

func TestRoundTripCollection(t *testing.T) {
	coll := geom.Collection{
		geom.Point{1, 1},
		geom.LineString{{0, 0}, {2, 2}},
	}
	got := roundTrip(t, coll)
	out, ok := got.(geom.Collection)
	if !ok {
		t.Fatalf("got %T, want geom.Collection", got)
	}
	if len(out) != 2 {
		t.Fatalf("got %d members, want 2", len(out))
	}
	if _, ok := out[0].(geom.Point); !ok {
		t.Errorf("member 0 = %T, want geom.Point", out[0])
	}
	if _, ok := out[1].(geom.LineString); !ok {
		t.Errorf("member 1 = %T, want geom.LineString", out[1])
	}
}

func TestFromBlobRejectsCurvedGeometry(t *testing.T) {
	h := geomtype.NewHeader(geomtype.CircularString, geomtype.XY)
	b := NewBuilder()
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	err := b.BeginGeometry(h)
	if errors.Cause(err) != ErrUnsupportedGeometry {
		t.Errorf("BeginGeometry(CircularString) err = %v, want wrapping ErrUnsupportedGeometry", err)
	}
}
