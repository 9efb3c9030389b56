package wkt

import (
	"strings"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

var (
	// ErrUnknownKeyword is returned when a geometry tag word is not one of
	// the ten recognized geometry class names.
	ErrUnknownKeyword = errors.New("wkt: unknown geometry keyword")
	// ErrExpected is wrapped with a description of what token was expected.
	ErrExpected = errors.New("wkt: unexpected token")
	// ErrDepthOverflow is returned when tagged geometry nesting exceeds
	// geomtype.MaxDepth.
	ErrDepthOverflow = errors.New("wkt: geometry nesting exceeds maximum depth")
)

// Reader is a recursive-descent WKT parser that drives a geomtype.Consumer.
// Locale is carried only as an explicit marker of the locale-independent
// parsing contract: all numeric literals go through strconv.ParseFloat
// regardless of its value, never a locale-sensitive conversion.
type Reader struct {
	lx     *lexer
	tok    Token
	Locale language.Tag
	depth  int
}

// NewReader builds a Reader over s and stores the BCP-47 locale loc in
// Locale; nothing reads it, and parsing never varies by locale.
func NewReader(s string, loc language.Tag) (*Reader, error) {
	r := &Reader{lx: newLexer(s), Locale: loc}
	if err := r.advance(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) advance() error {
	t, err := r.lx.next()
	if err != nil {
		return err
	}
	r.tok = t
	return nil
}

func (r *Reader) expect(kind TokenKind, what string) (Token, error) {
	if r.tok.Kind != kind {
		return Token{}, errors.Wrapf(ErrExpected, "column %d: expected %s, got %q", r.tok.Col, what, r.tok.Text)
	}
	t := r.tok
	return t, r.advance()
}

func (r *Reader) word() (string, int, error) {
	if r.tok.Kind != TokWord {
		return "", r.tok.Col, errors.Wrapf(ErrExpected, "column %d: expected keyword, got %q", r.tok.Col, r.tok.Text)
	}
	w, col := r.tok.Text, r.tok.Col
	return w, col, r.advance()
}

// ReadGeometry calls consumer.Begin, parses exactly one top-level tagged
// geometry, checks that all input was consumed, and calls consumer.End.
func (r *Reader) ReadGeometry(consumer geomtype.Consumer) error {
	if err := consumer.Begin(); err != nil {
		return err
	}
	if _, err := r.parseTaggedGeometry(consumer, nil); err != nil {
		return err
	}
	if r.tok.Kind != TokEOF {
		return errors.Wrapf(ErrExpected, "column %d: trailing input %q", r.tok.Col, r.tok.Text)
	}
	return consumer.End()
}

// geomKeyword maps a case-insensitive WKT tag word to a GeomType.
func geomKeyword(w string) (geomtype.GeomType, bool) {
	switch strings.ToUpper(w) {
	case "POINT":
		return geomtype.Point, true
	case "LINESTRING":
		return geomtype.LineString, true
	case "POLYGON":
		return geomtype.Polygon, true
	case "MULTIPOINT":
		return geomtype.MultiPoint, true
	case "MULTILINESTRING":
		return geomtype.MultiLineString, true
	case "MULTIPOLYGON":
		return geomtype.MultiPolygon, true
	case "GEOMETRYCOLLECTION":
		return geomtype.GeometryCollection, true
	case "CIRCULARSTRING":
		return geomtype.CircularString, true
	case "COMPOUNDCURVE":
		return geomtype.CompoundCurve, true
	case "CURVEPOLYGON":
		return geomtype.CurvePolygon, true
	}
	return 0, false
}

// coordSuffix maps an optional "Z", "M", or "ZM" suffix word following the
// geometry tag to its coordinate type; the caller consumes the token.
func coordSuffix(w string) (geomtype.CoordType, bool) {
	switch strings.ToUpper(w) {
	case "Z":
		return geomtype.XYZ, true
	case "M":
		return geomtype.XYM, true
	case "ZM":
		return geomtype.XYZM, true
	}
	return 0, false
}

// parseTaggedGeometry reads "KEYWORD [Z|M|ZM] (body)" or "KEYWORD [Z|M|ZM]
// EMPTY", emitting BeginGeometry/Coordinates*/EndGeometry on consumer.
// parentCoord, when non-nil, constrains the child's coordinate type.
func (r *Reader) parseTaggedGeometry(consumer geomtype.Consumer, parentCoord *geomtype.CoordType) (geomtype.Header, error) {
	if r.depth > geomtype.MaxDepth {
		return geomtype.Header{}, errors.Wrapf(ErrDepthOverflow, "depth %d exceeds max %d", r.depth, geomtype.MaxDepth)
	}
	r.depth++
	defer func() { r.depth-- }()

	word, col, err := r.word()
	if err != nil {
		return geomtype.Header{}, err
	}
	gtype, ok := geomKeyword(word)
	if !ok {
		return geomtype.Header{}, errors.Wrapf(ErrUnknownKeyword, "column %d: %q", col, word)
	}

	ctype := geomtype.XY
	if r.tok.Kind == TokWord {
		if ct, ok := coordSuffix(r.tok.Text); ok {
			ctype = ct
			if err := r.advance(); err != nil {
				return geomtype.Header{}, err
			}
		}
	}
	if parentCoord != nil {
		ctype = *parentCoord
	}

	h := geomtype.NewHeader(gtype, ctype)

	if r.tok.Kind == TokWord && strings.EqualFold(r.tok.Text, "EMPTY") {
		if err := r.advance(); err != nil {
			return geomtype.Header{}, err
		}
		if err := consumer.BeginGeometry(h); err != nil {
			return h, err
		}
		return h, consumer.EndGeometry(h)
	}

	if err := consumer.BeginGeometry(h); err != nil {
		return h, err
	}
	if _, err := r.expect(TokLParen, "'('"); err != nil {
		return h, err
	}

	if err := r.parseBody(consumer, h); err != nil {
		return h, err
	}

	if _, err := r.expect(TokRParen, "')'"); err != nil {
		return h, err
	}
	return h, consumer.EndGeometry(h)
}

func (r *Reader) parseBody(consumer geomtype.Consumer, h geomtype.Header) error {
	switch h.Type {
	case geomtype.Point:
		return r.parsePointBody(consumer, h)
	case geomtype.LineString, geomtype.CircularString:
		return r.parseCoordSeq(consumer, h)
	case geomtype.Polygon:
		return r.parseRingSeq(consumer, h)
	case geomtype.CurvePolygon:
		return r.parseTaggedSeq(consumer, h, curvePolygonChild)
	case geomtype.CompoundCurve:
		return r.parseCompoundCurveBody(consumer, h)
	case geomtype.MultiPoint:
		return r.parseMultiPointBody(consumer, h)
	case geomtype.MultiLineString:
		return r.parseUntaggedChildSeq(consumer, h, geomtype.LineString)
	case geomtype.MultiPolygon:
		return r.parseUntaggedPolygonSeq(consumer, h)
	case geomtype.GeometryCollection:
		return r.parseTaggedSeq(consumer, h, anyChild)
	default:
		return errors.Wrapf(ErrUnknownKeyword, "no body parser for %v", h.Type)
	}
}

func (r *Reader) parseNumber() (float64, error) {
	if r.tok.Kind != TokNumber {
		return 0, errors.Wrapf(ErrExpected, "column %d: expected number, got %q", r.tok.Col, r.tok.Text)
	}
	v := r.tok.Num
	return v, r.advance()
}

// parsePoint reads one coordinate tuple of h.Ordinates numbers.
func (r *Reader) parsePoint(h geomtype.Header) ([]float64, error) {
	coords := make([]float64, h.Ordinates)
	for i := range coords {
		v, err := r.parseNumber()
		if err != nil {
			return nil, err
		}
		coords[i] = v
	}
	return coords, nil
}

func (r *Reader) parsePointBody(consumer geomtype.Consumer, h geomtype.Header) error {
	coords, err := r.parsePoint(h)
	if err != nil {
		return err
	}
	return consumer.Coordinates(h, 1, coords, 0)
}

// parseCoordSeq reads a comma-separated list of coordinate tuples for a
// LineString or CircularString body and delivers them as one Coordinates
// batch.
func (r *Reader) parseCoordSeq(consumer geomtype.Consumer, h geomtype.Header) error {
	var all []float64
	n := 0
	for {
		pt, err := r.parsePoint(h)
		if err != nil {
			return err
		}
		all = append(all, pt...)
		n++
		if r.tok.Kind != TokComma {
			break
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
	if n == 0 {
		return nil
	}
	return consumer.Coordinates(h, n, all, 0)
}

// parseRingSeq reads "(x y, x y, ...), (x y, ...)" as a sequence of bare
// linear rings, each framed with its own BeginGeometry/EndGeometry.
func (r *Reader) parseRingSeq(consumer geomtype.Consumer, h geomtype.Header) error {
	for {
		rh := geomtype.NewHeader(geomtype.LinearRing, h.Coord)
		if err := consumer.BeginGeometry(rh); err != nil {
			return err
		}
		if _, err := r.expect(TokLParen, "'('"); err != nil {
			return err
		}
		if err := r.parseCoordSeq(consumer, rh); err != nil {
			return err
		}
		if _, err := r.expect(TokRParen, "')'"); err != nil {
			return err
		}
		if err := consumer.EndGeometry(rh); err != nil {
			return err
		}
		if r.tok.Kind != TokComma {
			return nil
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
}

type childKind uint8

const (
	curvePolygonChild childKind = iota
	anyChild
)

// parseTaggedSeq reads a comma-separated sequence of fully tagged child
// geometries (used by CurvePolygon and GeometryCollection bodies), with
// the CurvePolygon variant rejecting disallowed child types and honoring
// the compact-ring-as-LineString keyword elision from spec.md §4.6: a
// CurvePolygon ring with no circular arcs may be written as a bare
// "(x y, ...)" tuple list instead of "LINESTRING(...)".
func (r *Reader) parseTaggedSeq(consumer geomtype.Consumer, h geomtype.Header, kind childKind) error {
	for {
		if r.tok.Kind == TokLParen {
			if kind != curvePolygonChild {
				return errors.Wrapf(ErrExpected, "column %d: bare ring only permitted in curve polygon", r.tok.Col)
			}
			ch := geomtype.NewHeader(geomtype.LineString, h.Coord)
			if err := consumer.BeginGeometry(ch); err != nil {
				return err
			}
			if err := r.advance(); err != nil {
				return err
			}
			if err := r.parseCoordSeq(consumer, ch); err != nil {
				return err
			}
			if _, err := r.expect(TokRParen, "')'"); err != nil {
				return err
			}
			if err := consumer.EndGeometry(ch); err != nil {
				return err
			}
		} else {
			coord := h.Coord
			ch, err := r.parseTaggedGeometry(consumer, &coord)
			if err != nil {
				return err
			}
			if kind == curvePolygonChild {
				switch ch.Type {
				case geomtype.LineString, geomtype.CircularString, geomtype.CompoundCurve:
				default:
					return errors.Wrapf(ErrExpected, "curve polygon child %v not permitted", ch.Type)
				}
			}
		}
		if r.tok.Kind != TokComma {
			return nil
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
}

// parseCompoundCurveBody reads a comma-separated sequence of compound
// curve segments. Per the elision rule of spec.md §4.6/§9, a LineString
// segment is written as a bare "(x y, ...)" coordinate list rather than a
// tagged "LINESTRING(...)"; an explicit LINESTRING tag is a format error
// since the writer never emits one in this position. CircularString
// segments remain fully tagged.
func (r *Reader) parseCompoundCurveBody(consumer geomtype.Consumer, h geomtype.Header) error {
	for {
		if r.tok.Kind == TokLParen {
			ch := geomtype.NewHeader(geomtype.LineString, h.Coord)
			if err := consumer.BeginGeometry(ch); err != nil {
				return err
			}
			if err := r.advance(); err != nil {
				return err
			}
			if err := r.parseCoordSeq(consumer, ch); err != nil {
				return err
			}
			if _, err := r.expect(TokRParen, "')'"); err != nil {
				return err
			}
			if err := consumer.EndGeometry(ch); err != nil {
				return err
			}
		} else {
			if r.tok.Kind == TokWord && strings.EqualFold(r.tok.Text, "LINESTRING") {
				return errors.Wrapf(ErrExpected, "column %d: compound curve line string segments must be a bare coordinate list, not a LINESTRING tag", r.tok.Col)
			}
			coord := h.Coord
			ch, err := r.parseTaggedGeometry(consumer, &coord)
			if err != nil {
				return err
			}
			if ch.Type != geomtype.CircularString {
				return errors.Wrapf(ErrExpected, "compound curve child %v not permitted", ch.Type)
			}
		}
		if r.tok.Kind != TokComma {
			return nil
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
}

// parseMultiPointBody accepts both "MULTIPOINT(1 2, 3 4)" and the more
// verbose "MULTIPOINT((1 2), (3 4))" forms.
func (r *Reader) parseMultiPointBody(consumer geomtype.Consumer, h geomtype.Header) error {
	for {
		ch := geomtype.NewHeader(geomtype.Point, h.Coord)
		if err := consumer.BeginGeometry(ch); err != nil {
			return err
		}
		wrapped := r.tok.Kind == TokLParen
		if wrapped {
			if err := r.advance(); err != nil {
				return err
			}
		}
		if err := r.parsePointBody(consumer, ch); err != nil {
			return err
		}
		if wrapped {
			if _, err := r.expect(TokRParen, "')'"); err != nil {
				return err
			}
		}
		if err := consumer.EndGeometry(ch); err != nil {
			return err
		}
		if r.tok.Kind != TokComma {
			return nil
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
}

// parseUntaggedChildSeq reads a comma-separated sequence of children of a
// fixed, known type, each written without its own tag word — e.g. the
// LineString members of a MultiLineString appear as plain "(...)" groups.
func (r *Reader) parseUntaggedChildSeq(consumer geomtype.Consumer, h geomtype.Header, childType geomtype.GeomType) error {
	for {
		ch := geomtype.NewHeader(childType, h.Coord)
		if err := consumer.BeginGeometry(ch); err != nil {
			return err
		}
		if _, err := r.expect(TokLParen, "'('"); err != nil {
			return err
		}
		if err := r.parseCoordSeq(consumer, ch); err != nil {
			return err
		}
		if _, err := r.expect(TokRParen, "')'"); err != nil {
			return err
		}
		if err := consumer.EndGeometry(ch); err != nil {
			return err
		}
		if r.tok.Kind != TokComma {
			return nil
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
}

// parseUntaggedPolygonSeq reads the "((ring, ring), (ring))" body of a
// MultiPolygon: each child polygon is an untagged group of bare rings.
func (r *Reader) parseUntaggedPolygonSeq(consumer geomtype.Consumer, h geomtype.Header) error {
	for {
		ch := geomtype.NewHeader(geomtype.Polygon, h.Coord)
		if err := consumer.BeginGeometry(ch); err != nil {
			return err
		}
		if _, err := r.expect(TokLParen, "'('"); err != nil {
			return err
		}
		if err := r.parseRingSeq(consumer, ch); err != nil {
			return err
		}
		if _, err := r.expect(TokRParen, "')'"); err != nil {
			return err
		}
		if err := consumer.EndGeometry(ch); err != nil {
			return err
		}
		if r.tok.Kind != TokComma {
			return nil
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
}
