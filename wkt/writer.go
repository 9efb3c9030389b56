package wkt

import (
	"bytes"
	"strconv"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// wtFrame is one entry of the writer's depth-indexed stack.
type wtFrame struct {
	t        geomtype.GeomType
	bare     bool
	tag      string
	startPos int // buffer offset of this node's opening '('
	count    int // points or children already written, for comma + EMPTY
}

// Writer is a depth-stack pretty-printer: a geomtype.Consumer that renders
// WKT text directly into an internal bytes.Buffer as callbacks arrive,
// with no intermediate tree. A node's opening '(' is tentatively written
// at BeginGeometry and retroactively replaced with "EMPTY" at EndGeometry
// if it never received any content.
type Writer struct {
	buf    bytes.Buffer
	stack  []wtFrame
	Locale language.Tag
}

var _ geomtype.Consumer = (*Writer)(nil)

// NewWriter returns a Writer. Locale is carried only as an explicit marker
// of the locale-independent formatting contract (strconv.FormatFloat is
// used regardless of its value).
func NewWriter(loc language.Tag) *Writer {
	return &Writer{Locale: loc}
}

// String returns the accumulated WKT text. Valid after End returns.
func (w *Writer) String() string {
	return w.buf.String()
}

func (w *Writer) Begin() error {
	w.buf.Reset()
	w.stack = w.stack[:0]
	return nil
}

func (w *Writer) End() error {
	if len(w.stack) != 0 {
		return errors.New("wkt: End called with unclosed geometry frames")
	}
	return nil
}

func keywordFor(t geomtype.GeomType) (string, error) {
	switch t {
	case geomtype.Point:
		return "POINT", nil
	case geomtype.LineString:
		return "LINESTRING", nil
	case geomtype.Polygon:
		return "POLYGON", nil
	case geomtype.MultiPoint:
		return "MULTIPOINT", nil
	case geomtype.MultiLineString:
		return "MULTILINESTRING", nil
	case geomtype.MultiPolygon:
		return "MULTIPOLYGON", nil
	case geomtype.GeometryCollection:
		return "GEOMETRYCOLLECTION", nil
	case geomtype.CircularString:
		return "CIRCULARSTRING", nil
	case geomtype.CompoundCurve:
		return "COMPOUNDCURVE", nil
	case geomtype.CurvePolygon:
		return "CURVEPOLYGON", nil
	}
	return "", errors.Errorf("wkt: %v has no WKT keyword", t)
}

func coordSuffixFor(c geomtype.CoordType) string {
	switch c {
	case geomtype.XYZ:
		return " Z"
	case geomtype.XYM:
		return " M"
	case geomtype.XYZM:
		return " ZM"
	}
	return ""
}

// bareChild reports whether h's node is written without its own tag
// keyword given the current top-of-stack parent: linear rings inside a
// Polygon, point/linestring/polygon members of the corresponding Multi*
// collection, and — the curve elision rule of spec.md §4.6 — a LineString
// ring inside a CurvePolygon with no circular arcs, or a LineString segment
// inside a CompoundCurve.
func bareChild(h geomtype.Header, parent *wtFrame) bool {
	if h.Type == geomtype.LinearRing {
		return true
	}
	if parent == nil {
		return false
	}
	switch parent.t {
	case geomtype.MultiPoint:
		return h.Type == geomtype.Point
	case geomtype.MultiLineString:
		return h.Type == geomtype.LineString
	case geomtype.MultiPolygon:
		return h.Type == geomtype.Polygon
	case geomtype.CurvePolygon, geomtype.CompoundCurve:
		return h.Type == geomtype.LineString
	}
	return false
}

func (w *Writer) BeginGeometry(h geomtype.Header) error {
	if len(w.stack) > geomtype.MaxDepth {
		return errors.New("wkt: geometry nesting exceeds maximum depth")
	}

	var parent *wtFrame
	if len(w.stack) > 0 {
		parent = &w.stack[len(w.stack)-1]
	}
	bare := bareChild(h, parent)

	if parent != nil {
		if parent.count > 0 {
			w.buf.WriteString(", ")
		}
		parent.count++
	}

	var tag string
	if !bare {
		kw, err := keywordFor(h.Type)
		if err != nil {
			return err
		}
		tag = kw + coordSuffixFor(h.Coord)
		w.buf.WriteString(tag)
		w.buf.WriteByte(' ')
	}

	startPos := w.buf.Len()
	w.buf.WriteByte('(')

	w.stack = append(w.stack, wtFrame{t: h.Type, bare: bare, tag: tag, startPos: startPos})
	return nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (w *Writer) Coordinates(h geomtype.Header, pointCount int, coords []float64, skip int) error {
	if len(w.stack) == 0 {
		return errors.New("wkt: Coordinates called outside any geometry")
	}
	f := &w.stack[len(w.stack)-1]
	stride := h.Ordinates
	newPoints := pointCount - skip/stride
	for i := 0; i < newPoints; i++ {
		if f.count > 0 {
			w.buf.WriteString(", ")
		}
		base := skip + i*stride
		for o := 0; o < stride; o++ {
			if o > 0 {
				w.buf.WriteByte(' ')
			}
			w.buf.WriteString(formatNum(coords[base+o]))
		}
		f.count++
	}
	return nil
}

func (w *Writer) EndGeometry(h geomtype.Header) error {
	if len(w.stack) == 0 {
		return errors.New("wkt: EndGeometry with no matching BeginGeometry")
	}
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	if f.count == 0 {
		w.buf.Truncate(f.startPos)
		w.buf.WriteString("EMPTY")
	} else {
		w.buf.WriteByte(')')
	}
	return nil
}
