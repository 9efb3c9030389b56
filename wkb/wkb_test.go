package wkb

import (
	"math"
	"testing"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkt"
	"github.com/gdey/tbltest"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// roundTripWKB parses s as WKT, writes it as WKB in dialect, reads the WKB
// back, and re-renders it as WKT for comparison.
func roundTripWKB(t *testing.T, s string, dialect Dialect) string {
	t.Helper()
	wr, err := wkt.NewReader(s, language.AmericanEnglish)
	if err != nil {
		t.Fatalf("wkt.NewReader(%q): %v", s, err)
	}
	bs := stream.NewGrowable(64)
	w := NewWriter(bs, dialect)
	if err := wr.ReadGeometry(w); err != nil {
		t.Fatalf("%q: driving wkb.Writer: %v", s, err)
	}

	r := NewReader(stream.NewFixed(bs.Bytes()), dialect, nil)
	out := wkt.NewWriter(language.AmericanEnglish)
	if err := r.ReadGeometry(out); err != nil {
		t.Fatalf("%q: reading back WKB: %v", s, err)
	}
	return out.String()
}

func TestRoundTripISO(t *testing.T) {
	tests := tbltest.Cases(
		"POINT (1 2)",
		"POINT Z (1 2 3)",
		"POINT EMPTY",
		"LINESTRING (0 0, 1 1, 2 2)",
		"LINESTRING EMPTY",
		"POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))",
		"POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (2 2, 2 8, 8 8, 8 2, 2 2))",
		"MULTIPOINT ((0 0), (1 1))",
		"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))",
		"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((2 2, 3 2, 3 3, 2 2)))",
		"GEOMETRYCOLLECTION (POINT (1 1), LINESTRING (0 0, 1 1))",
		"CIRCULARSTRING (0 0, 1 1, 2 0)",
		"COMPOUNDCURVE ((0 0, 1 1), CIRCULARSTRING (1 1, 2 2, 3 1))",
		"CURVEPOLYGON (CIRCULARSTRING (0 0, 1 1, 2 0, 1 -1, 0 0))",
	)
	tests.Run(func(idx int, s string) {
		got := roundTripWKB(t, s, ISO)
		if got != s {
			t.Errorf("case %d: got %q, want %q", idx, got, s)
		}
	})
}

func TestRoundTripSpatialite(t *testing.T) {
	tests := tbltest.Cases(
		"POINT (1 2)",
		"POINT EMPTY",
		"LINESTRING (0 0, 1 1, 2 2)",
		"POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))",
		"GEOMETRYCOLLECTION (POINT (1 1), LINESTRING (0 0, 1 1))",
	)
	tests.Run(func(idx int, s string) {
		got := roundTripWKB(t, s, Spatialite)
		if got != s {
			t.Errorf("case %d: got %q, want %q", idx, got, s)
		}
	})
}

// TestEmptyPointFullPayload regression-tests the writer truncation bug: a
// root Point EMPTY must produce the full 21-byte marker+type+NaN payload,
// not a 5-byte header with the NaN ordinates seeked past and discarded.
func TestEmptyPointFullPayload(t *testing.T) {
	s := stream.NewGrowable(64)
	w := NewWriter(s, ISO)
	h := geomtype.NewHeader(geomtype.Point, geomtype.XY)
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := w.BeginGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := w.EndGeometry(h); err != nil {
		t.Fatal(err)
	}
	if err := w.End(); err != nil {
		t.Fatal(err)
	}

	data := s.Bytes()
	if len(data) != 21 {
		t.Fatalf("empty point WKB length = %d, want 21 (1 marker + 4 type + 16 NaN ordinates)", len(data))
	}

	x := math.Float64frombits(getLE64(data[5:13]))
	y := math.Float64frombits(getLE64(data[13:21]))
	if !math.IsNaN(x) || !math.IsNaN(y) {
		t.Errorf("empty point ordinates = (%v, %v), want (NaN, NaN)", x, y)
	}

	r := NewReader(stream.NewFixed(data), ISO, nil)
	var sawCoords bool
	cb := &coordSeenConsumer{seen: &sawCoords}
	if err := r.ReadGeometry(cb); err != nil {
		t.Fatalf("ReadGeometry: %v", err)
	}
	if sawCoords {
		t.Error("empty point must not deliver a Coordinates callback")
	}
}

// TestEmptyPointInsideCollection regression-tests the same truncation bug
// in a non-root position: the seek-back for an enclosing GeometryCollection
// must see the full NaN payload of its empty-Point child when patching its
// own count, or the whole stream truncates early.
func TestEmptyPointInsideCollection(t *testing.T) {
	got := roundTripWKB(t, "GEOMETRYCOLLECTION (POINT EMPTY, POINT (1 1))", ISO)
	want := "GEOMETRYCOLLECTION (POINT EMPTY, POINT (1 1))"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func getLE64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

type coordSeenConsumer struct {
	geomtype.BaseConsumer
	seen *bool
}

func (c *coordSeenConsumer) Coordinates(h geomtype.Header, n int, coords []float64, skip int) error {
	*c.seen = true
	return nil
}

func TestCircularStringBadArity(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(1)) // little-endian marker
	must(t, s.WriteU32(8))
	must(t, s.WriteU32(4)) // invalid: (4-3) mod 2 != 0
	for i := 0; i < 4; i++ {
		must(t, s.WriteDouble(float64(i)))
		must(t, s.WriteDouble(float64(i)))
	}

	r := NewReader(stream.NewFixed(s.Bytes()), ISO, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected bad-arity error")
	}
	if errors.Cause(err) != ErrBadArity {
		t.Errorf("got %v, want ErrBadArity", err)
	}
}

func TestUnknownTypeCode(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(1))
	must(t, s.WriteU32(999))

	r := NewReader(stream.NewFixed(s.Bytes()), ISO, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected unknown-type error")
	}
	if errors.Cause(err) != ErrUnknownType {
		t.Errorf("got %v, want ErrUnknownType", err)
	}
}

func TestBadEndianByte(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(7)) // neither 0 nor 1

	r := NewReader(stream.NewFixed(s.Bytes()), ISO, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected bad-endian-byte error")
	}
	if errors.Cause(err) != ErrBadEndianByte {
		t.Errorf("got %v, want ErrBadEndianByte", err)
	}
}

func TestSpatialiteBadMarker(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(1)) // not the 0x69 sub-marker

	r := NewReader(stream.NewFixed(s.Bytes()), Spatialite, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected bad-marker error")
	}
	if errors.Cause(err) != ErrBadMarker {
		t.Errorf("got %v, want ErrBadMarker", err)
	}
}

func TestSpatialiteMissingTrailer(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(spatialiteSubMarker))
	must(t, s.WriteU32(1)) // Point
	must(t, s.WriteDouble(1))
	must(t, s.WriteDouble(2))
	must(t, s.WriteU8(0x00)) // wrong trailer byte, not 0xFE

	r := NewReader(stream.NewFixed(s.Bytes()), Spatialite, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected missing-trailer error")
	}
	if errors.Cause(err) != ErrBadTrailer {
		t.Errorf("got %v, want ErrBadTrailer", err)
	}
}

func TestDimensionMismatchInCollection(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(1))
	must(t, s.WriteU32(7)) // GeometryCollection, XY
	must(t, s.WriteU32(1)) // 1 child
	must(t, s.WriteU8(1))
	must(t, s.WriteU32(1001)) // Point, XYZ: mismatched dimension
	must(t, s.WriteDouble(1))
	must(t, s.WriteDouble(2))
	must(t, s.WriteDouble(3))

	r := NewReader(stream.NewFixed(s.Bytes()), ISO, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected dimension-mismatch error")
	}
	if errors.Cause(err) != ErrDimMismatch {
		t.Errorf("got %v, want ErrDimMismatch", err)
	}
}

func TestCompoundCurveDisallowedChild(t *testing.T) {
	s := stream.NewGrowable(64)
	must(t, s.WriteU8(1))
	must(t, s.WriteU32(9)) // CompoundCurve, XY
	must(t, s.WriteU32(1)) // 1 child
	must(t, s.WriteU8(1))
	must(t, s.WriteU32(3)) // Polygon: not permitted as a compound curve child
	must(t, s.WriteU32(0)) // 0 rings

	r := NewReader(stream.NewFixed(s.Bytes()), ISO, nil)
	err := r.ReadGeometry(geomtype.BaseConsumer{})
	if err == nil {
		t.Fatal("expected disallowed-child error")
	}
	if errors.Cause(err) != ErrDisallowedChild {
		t.Errorf("got %v, want ErrDisallowedChild", err)
	}
}

func TestDepthOverflowOnWrite(t *testing.T) {
	s := stream.NewGrowable(64)
	w := NewWriter(s, ISO)
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	h := geomtype.NewHeader(geomtype.GeometryCollection, geomtype.XY)
	var err error
	for i := 0; i < geomtype.MaxDepth*2; i++ {
		if err = w.BeginGeometry(h); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("expected depth-overflow error")
	}
	if errors.Cause(err) != ErrDepthOverflow {
		t.Errorf("got %v, want ErrDepthOverflow", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("building raw buffer: %v", err)
	}
}
