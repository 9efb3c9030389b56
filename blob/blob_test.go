package blob

import (
	"testing"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
	"github.com/gdey/tbltest"
)

type point struct {
	coord geomtype.CoordType
	vals  []float64
}

func writePointBlob(t *testing.T, dialect ContainerDialect, p point, srid int32) []byte {
	t.Helper()
	var wkbDialect wkb.Dialect
	if dialect == SpatialiteBlob {
		wkbDialect = wkb.Spatialite
	}
	s := stream.NewGrowable(64)
	w := NewWriter(s, dialect, wkbDialect, srid)
	h := geomtype.NewHeader(geomtype.Point, p.coord)
	if err := w.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := w.BeginGeometry(h); err != nil {
		t.Fatalf("BeginGeometry: %v", err)
	}
	if len(p.vals) > 0 {
		if err := w.Coordinates(h, 1, p.vals, 0); err != nil {
			t.Fatalf("Coordinates: %v", err)
		}
	}
	if err := w.EndGeometry(h); err != nil {
		t.Fatalf("EndGeometry: %v", err)
	}
	if err := w.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	return s.Bytes()
}

func TestGeoPackagePointRoundTrip(t *testing.T) {
	tests := tbltest.Cases(
		point{coord: geomtype.XY, vals: []float64{1, 2}},
		point{coord: geomtype.XYZ, vals: []float64{1, 2, 3}},
	)
	tests.Run(func(idx int, p point) {
		data := writePointBlob(t, GeoPackage, p, 4326)
		s := stream.NewFixed(data)
		r := NewReader(s, GeoPackage, nil)
		var hdr Header
		got := make([]float64, 0, len(p.vals))
		cb := &coordCapture{coords: &got}
		if err := r.ReadGeometry(cb, &hdr); err != nil {
			t.Fatalf("case %d: ReadGeometry: %v", idx, err)
		}
		if hdr.SRID != 4326 {
			t.Errorf("case %d: SRID = %d, want 4326", idx, hdr.SRID)
		}
		if hdr.Env.Empty {
			t.Errorf("case %d: unexpectedly empty", idx)
		}
	})
}

func TestGeoPackageLineStringEnvelope(t *testing.T) {
	s := stream.NewGrowable(64)
	w := NewWriter(s, GeoPackage, wkb.ISO, 0)
	h := geomtype.NewHeader(geomtype.LineString, geomtype.XY)
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := w.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := w.Coordinates(h, 3, []float64{0, 0, 5, 5, 10, 0}, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := w.End(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(stream.NewFixed(s.Bytes()), GeoPackage, nil)
	var hdr Header
	if err := r.ReadGeometry(geomtype.BaseConsumer{}, &hdr); err != nil {
		t.Fatalf("ReadGeometry: %v", err)
	}
	if hdr.Env.X.Min != 0 || hdr.Env.X.Max != 10 {
		t.Errorf("X envelope = [%v, %v], want [0, 10]", hdr.Env.X.Min, hdr.Env.X.Max)
	}
	if hdr.Env.Y.Min != 0 || hdr.Env.Y.Max != 5 {
		t.Errorf("Y envelope = [%v, %v], want [0, 5]", hdr.Env.Y.Min, hdr.Env.Y.Max)
	}
}

func TestSpatialiteRoundTrip(t *testing.T) {
	p := point{coord: geomtype.XYZ, vals: []float64{1, 2, 3}}
	data := writePointBlob(t, SpatialiteBlob, p, 3857)
	s := stream.NewFixed(data)
	r := NewReader(s, SpatialiteBlob, nil)
	var hdr Header
	if err := r.ReadGeometry(geomtype.BaseConsumer{}, &hdr); err != nil {
		t.Fatalf("ReadGeometry: %v", err)
	}
	if hdr.SRID != 3857 {
		t.Errorf("SRID = %d, want 3857", hdr.SRID)
	}
}

type coordCapture struct {
	geomtype.BaseConsumer
	coords *[]float64
}

func (c *coordCapture) Coordinates(h geomtype.Header, n int, coords []float64, skip int) error {
	*c.coords = append(*c.coords, coords[skip:]...)
	return nil
}
