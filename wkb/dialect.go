// Package wkb implements the ISO and Spatialite dialects of Well-Known
// Binary (C6): a recursive-descent reader that drives a geomtype.Consumer,
// and a two-pass writer that is itself a Consumer, patching geometry
// headers after their children are known.
package wkb

import (
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/pkg/errors"
)

// Dialect selects the WKB framing variant.
type Dialect uint8

const (
	// ISO is the standard dialect: each node has its own endian byte and
	// may in principle change endianness node to node.
	ISO Dialect = iota
	// Spatialite frames each node with a fixed 0x69 sub-marker byte
	// instead of a real endian flag (the endianness is fixed once at the
	// enclosing blob header) and terminates the whole stream with 0xFE.
	Spatialite
)

// spatialiteSubMarker is the fixed per-node marker byte in the Spatialite
// dialect; it never rotates stream endianness.
const spatialiteSubMarker = 0x69

// spatialiteTrailer terminates a Spatialite WKB stream.
const spatialiteTrailer = 0xFE

var (
	ErrUnknownType     = errors.New("wkb: unknown geometry type code")
	ErrDimMismatch     = errors.New("wkb: coordinate type mismatch between parent and child")
	ErrBadArity        = errors.New("wkb: circular string point count must be 0 or (n-3) mod 2 == 0")
	ErrBadEndianByte   = errors.New("wkb: invalid endian byte")
	ErrBadMarker       = errors.New("wkb: invalid spatialite sub-geometry marker")
	ErrBadTrailer      = errors.New("wkb: missing spatialite trailer byte")
	ErrDisallowedChild = errors.New("wkb: child geometry type not permitted in this context")
	ErrDepthOverflow   = errors.New("wkb: geometry nesting exceeds maximum depth")
)

// typeCode returns the ISO/Spatialite WKB wire type code for a
// (geometry-type, coord-type) pair: a base code 1..10 plus a dimension
// modifier (0/1000/2000/3000).
func typeCode(t geomtype.GeomType, c geomtype.CoordType) (uint32, error) {
	base, ok := baseCode(t)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownType, "%v has no WKB type code", t)
	}
	var mod uint32
	switch c {
	case geomtype.XYZ:
		mod = 1000
	case geomtype.XYM:
		mod = 2000
	case geomtype.XYZM:
		mod = 3000
	}
	return base + mod, nil
}

func baseCode(t geomtype.GeomType) (uint32, bool) {
	switch t {
	case geomtype.Point:
		return 1, true
	case geomtype.LineString, geomtype.LinearRing:
		return 2, true
	case geomtype.Polygon:
		return 3, true
	case geomtype.MultiPoint:
		return 4, true
	case geomtype.MultiLineString:
		return 5, true
	case geomtype.MultiPolygon:
		return 6, true
	case geomtype.GeometryCollection:
		return 7, true
	case geomtype.CircularString:
		return 8, true
	case geomtype.CompoundCurve:
		return 9, true
	case geomtype.CurvePolygon:
		return 10, true
	}
	return 0, false
}

// fromTypeCode decodes a wire type code back into a (geometry-type,
// coord-type) pair. The source is taken as authoritative for accepting
// codes above the standard 1..7 range (spec.md §9).
func fromTypeCode(code uint32) (geomtype.GeomType, geomtype.CoordType, error) {
	base := code
	ctype := geomtype.XY
	switch {
	case code >= 3000:
		ctype = geomtype.XYZM
		base = code - 3000
	case code >= 2000:
		ctype = geomtype.XYM
		base = code - 2000
	case code >= 1000:
		ctype = geomtype.XYZ
		base = code - 1000
	}
	switch base {
	case 1:
		return geomtype.Point, ctype, nil
	case 2:
		return geomtype.LineString, ctype, nil
	case 3:
		return geomtype.Polygon, ctype, nil
	case 4:
		return geomtype.MultiPoint, ctype, nil
	case 5:
		return geomtype.MultiLineString, ctype, nil
	case 6:
		return geomtype.MultiPolygon, ctype, nil
	case 7:
		return geomtype.GeometryCollection, ctype, nil
	case 8:
		return geomtype.CircularString, ctype, nil
	case 9:
		return geomtype.CompoundCurve, ctype, nil
	case 10:
		return geomtype.CurvePolygon, ctype, nil
	default:
		return 0, 0, errors.Wrapf(ErrUnknownType, "code %d", code)
	}
}

// maxBatch bounds the number of points delivered per Coordinates callback
// (spec.md §4.5).
const maxBatch = 10
