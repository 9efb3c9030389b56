// Package geomtype holds the geometry/coordinate type enums, the geometry
// header and envelope records, and the push-based Consumer contract (C4)
// that every codec reader/writer in wkb, wkt, blob, and envelope is built
// around.
package geomtype

import "strings"

// GeomType is the closed geometry-class tag set of spec.md §3.
type GeomType uint8

const (
	Geometry GeomType = iota
	Point
	LineString
	Polygon
	MultiPoint
	MultiLineString
	MultiPolygon
	GeometryCollection
	CircularString
	CompoundCurve
	CurvePolygon
	Surface
	Curve
	LinearRing
)

var geomTypeNames = [...]string{
	"Geometry", "Point", "LineString", "Polygon", "MultiPoint",
	"MultiLineString", "MultiPolygon", "GeometryCollection",
	"CircularString", "CompoundCurve", "CurvePolygon", "Surface", "Curve",
	"LinearRing",
}

func (t GeomType) String() string {
	if int(t) < len(geomTypeNames) {
		return geomTypeNames[t]
	}
	return "Unknown"
}

// CoordType is the coordinate dimensionality of a geometry instance. A
// single geometry has one CoordType applied recursively to every
// component.
type CoordType uint8

const (
	XY CoordType = iota
	XYZ
	XYM
	XYZM
)

// OrdinateCount returns the number of ordinates per coordinate: 2 for XY,
// 3 for XYZ/XYM, 4 for XYZM.
func (c CoordType) OrdinateCount() int {
	switch c {
	case XYZ, XYM:
		return 3
	case XYZM:
		return 4
	default:
		return 2
	}
}

func (c CoordType) HasZ() bool { return c == XYZ || c == XYZM }
func (c CoordType) HasM() bool { return c == XYM || c == XYZM }

func (c CoordType) String() string {
	switch c {
	case XYZ:
		return "XYZ"
	case XYM:
		return "XYM"
	case XYZM:
		return "XYZM"
	default:
		return "XY"
	}
}

// supertypes records the hierarchy from spec.md §3: Geometry -> {Point,
// Curve, Surface, GeometryCollection}; Curve -> {LineString,
// CircularString, CompoundCurve, LinearRing}; LineString -> LinearRing;
// Surface -> CurvePolygon -> Polygon; GeometryCollection -> {MultiPoint,
// MultiCurve, MultiSurface}; MultiCurve -> MultiLineString; MultiSurface
// -> MultiPolygon.
//
// MultiCurve/MultiSurface have no dedicated GeomType tag (spec.md's tag
// set does not list them); MultiLineString and MultiPolygon carry their
// assignability directly against Curve/Surface/GeometryCollection below.
var supertypes = map[GeomType][]GeomType{
	Point:              {Geometry},
	Curve:              {Geometry},
	Surface:            {Geometry},
	GeometryCollection: {Geometry},
	LineString:         {Curve},
	CircularString:     {Curve},
	CompoundCurve:      {Curve},
	LinearRing:         {LineString, Curve},
	CurvePolygon:       {Surface},
	Polygon:            {CurvePolygon, Surface},
	MultiPoint:         {GeometryCollection},
	MultiLineString:    {Curve, GeometryCollection},
	MultiPolygon:       {Surface, GeometryCollection},
}

// IsAssignableFrom reports whether a value of type actual may populate a
// column/slot declared as declared, per the hierarchy above. Every type is
// assignable to itself and to Geometry.
func IsAssignableFrom(declared, actual GeomType) bool {
	if declared == actual || declared == Geometry {
		return true
	}
	seen := map[GeomType]bool{actual: true}
	queue := []GeomType{actual}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for _, s := range supertypes[t] {
			if s == declared {
				return true
			}
			if !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}
	return false
}

// ParseGeomType maps a case-insensitive geometry keyword (as it appears in
// WKT, or in a DDL geometry-type column) to its canonical GeomType. An
// "ST_" prefix is stripped before lookup, and "GEOMCOLLECTION" is accepted
// as a synonym for "GEOMETRYCOLLECTION", matching the normalisation table
// in the GLOSSARY.
func ParseGeomType(name string) (GeomType, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "ST_")
	switch n {
	case "GEOMETRY":
		return Geometry, true
	case "POINT":
		return Point, true
	case "LINESTRING":
		return LineString, true
	case "POLYGON":
		return Polygon, true
	case "MULTIPOINT":
		return MultiPoint, true
	case "MULTILINESTRING":
		return MultiLineString, true
	case "MULTIPOLYGON":
		return MultiPolygon, true
	case "GEOMETRYCOLLECTION", "GEOMCOLLECTION":
		return GeometryCollection, true
	case "CIRCULARSTRING":
		return CircularString, true
	case "COMPOUNDCURVE":
		return CompoundCurve, true
	case "CURVEPOLYGON":
		return CurvePolygon, true
	case "MULTICURVE":
		return Curve, true
	case "MULTISURFACE":
		return Surface, true
	case "CURVE":
		return Curve, true
	case "SURFACE":
		return Surface, true
	case "LINEARRING":
		return LinearRing, true
	default:
		return Geometry, false
	}
}
