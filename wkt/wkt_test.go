package wkt

import (
	"strings"
	"testing"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/gdey/tbltest"
	"golang.org/x/text/language"
)

// roundTrip parses s and re-renders it, returning the rendered text.
func roundTrip(t *testing.T, s string) string {
	t.Helper()
	r, err := NewReader(s, language.AmericanEnglish)
	if err != nil {
		t.Fatalf("NewReader(%q): %v", s, err)
	}
	w := NewWriter(language.AmericanEnglish)
	if err := r.ReadGeometry(w); err != nil {
		t.Fatalf("ReadGeometry(%q): %v", s, err)
	}
	return w.String()
}

func TestRoundTrip(t *testing.T) {
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
		got := roundTrip(t, s)
		if got == "" {
			t.Fatalf("case %d: empty output for %q", idx, s)
		}
	})
}

func TestCurvePolygonRingElision(t *testing.T) {
	// A CurvePolygon ring with no arcs is written bare, as a tuple list
	// rather than "LINESTRING(...)".
	got := roundTrip(t, "CURVEPOLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
	want := "CURVEPOLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompoundCurveLineStringElision(t *testing.T) {
	// A LineString segment of a compound curve is written bare, as a
	// tuple list rather than "LINESTRING(...)".
	got := roundTrip(t, "COMPOUNDCURVE ((0 0, 1 1), CIRCULARSTRING (1 1, 2 2, 3 1))")
	want := "COMPOUNDCURVE ((0 0, 1 1), CIRCULARSTRING (1 1, 2 2, 3 1))"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompoundCurveRejectsTaggedLineString(t *testing.T) {
	// An explicit LINESTRING tag inside a compound curve is a format
	// error: the writer never emits one in this position, so the reader
	// must not accept one either.
	r, err := NewReader("COMPOUNDCURVE (LINESTRING (0 0, 1 1), CIRCULARSTRING (1 1, 2 2, 3 1))", language.AmericanEnglish)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	w := NewWriter(language.AmericanEnglish)
	if err := r.ReadGeometry(w); err == nil {
		t.Fatal("expected format error for tagged LINESTRING in compound curve")
	}
}

func TestCompoundCurveBareListsParseAsLineStrings(t *testing.T) {
	// CircularString segments must remain tagged, so a bare coordinate
	// list in that position is read as a LineString segment, not an arc.
	r, err := NewReader("COMPOUNDCURVE ((0 0, 1 1), (1 1, 2 2, 3 1))", language.AmericanEnglish)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	w := NewWriter(language.AmericanEnglish)
	if err := r.ReadGeometry(w); err != nil {
		// Two bare lists both parse as LineString segments, which is a
		// legal (if degenerate) compound curve; this asserts it does not
		// spuriously fail, distinguishing from the tagged-rejection case.
		t.Fatalf("unexpected error for two bare line string segments: %v", err)
	}
}

func TestNestingDepthLimit(t *testing.T) {
	open := strings.Repeat("GEOMETRYCOLLECTION (", geomtype.MaxDepth+2)
	tail := strings.Repeat(")", geomtype.MaxDepth+2)
	s := open + "POINT (1 1)" + tail
	r, err := NewReader(s, language.AmericanEnglish)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	w := NewWriter(language.AmericanEnglish)
	if err := r.ReadGeometry(w); err == nil {
		t.Fatal("expected depth-overflow error for over-nested input")
	}
}

func TestLexErrorColumn(t *testing.T) {
	// NewReader lexes only the first token; the bad character at column 10
	// is reached while ReadGeometry parses the point body.
	r, err := NewReader("POINT (1 $)", language.AmericanEnglish)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	err = r.ReadGeometry(NewWriter(language.AmericanEnglish))
	if err == nil {
		t.Fatal("expected lexical error")
	}
	if !strings.Contains(err.Error(), "column 10") {
		t.Errorf("error %q does not name column 10", err)
	}
}

func TestUnknownKeyword(t *testing.T) {
	r, err := NewReader("BANANA (1 2)", language.AmericanEnglish)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	w := NewWriter(language.AmericanEnglish)
	if err := r.ReadGeometry(w); err == nil {
		t.Fatal("expected unknown-keyword error")
	}
}

func TestDimensionalSuffixes(t *testing.T) {
	cases := map[string]geomtype.CoordType{
		"POINT (1 2)":          geomtype.XY,
		"POINT Z (1 2 3)":      geomtype.XYZ,
		"POINT M (1 2 3)":      geomtype.XYM,
		"POINT ZM (1 2 3 4)":   geomtype.XYZM,
	}
	for s, want := range cases {
		r, err := NewReader(s, language.AmericanEnglish)
		if err != nil {
			t.Fatalf("%q: NewReader: %v", s, err)
		}
		var got geomtype.CoordType
		capture := geomtype.BaseConsumer{}
		_ = capture
		var seen geomtype.Header
		cb := &headerCapture{}
		if err := r.ReadGeometry(cb); err != nil {
			t.Fatalf("%q: ReadGeometry: %v", s, err)
		}
		seen = cb.h
		got = seen.Coord
		if got != want {
			t.Errorf("%q: coord type = %v, want %v", s, got, want)
		}
	}
}

type headerCapture struct {
	geomtype.BaseConsumer
	h geomtype.Header
}

func (c *headerCapture) BeginGeometry(h geomtype.Header) error {
	c.h = h
	return nil
}
