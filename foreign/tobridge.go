// Package foreign implements the bridge between this module's geometry
// Consumer protocol and github.com/go-spatial/geom's value types (C11),
// in both directions: a Consumer that builds go-spatial/geom values, and
// a recursive visitor that drives any Consumer from one.
//
// go-spatial/geom is a straight-sided, two-dimensional geometry library:
// it has no representation for CircularString, CompoundCurve, or
// CurvePolygon, and no Z/M ordinates. The bridge rejects the curved
// classes outright and silently drops Z/M ordinates on the way in,
// carrying only X/Y across — the same scope restriction the library
// itself imposes on every one of its callers.
package foreign

import (
	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/go-spatial/geom"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedGeometry is returned for a geometry class
	// go-spatial/geom cannot represent.
	ErrUnsupportedGeometry = errors.New("foreign: go-spatial/geom has no representation for this geometry class")
	// ErrBadChildSlot is returned when add_sub_geometry is asked to slot
	// a completed child into a parent variant that cannot hold it.
	ErrBadChildSlot = errors.New("foreign: child geometry does not fit its parent's slot")
)

// node is one entry of Builder's open-geometry stack. Exactly one of its
// pointer fields is set, chosen by BeginGeometry from h.Type; Coordinates
// and add_sub_geometry both dispatch on the same switch.
type node struct {
	t     geomtype.GeomType
	pt    *geom.Point
	ls    *geom.LineString
	poly  *geom.Polygon
	mp    *geom.MultiPoint
	mls   *geom.MultiLineString
	mpoly *geom.MultiPolygon
	coll  *geom.Collection
}

func newNode(t geomtype.GeomType) (*node, error) {
	n := &node{t: t}
	switch t {
	case geomtype.Point:
		n.pt = &geom.Point{}
	case geomtype.LineString, geomtype.LinearRing:
		n.ls = &geom.LineString{}
	case geomtype.Polygon:
		n.poly = &geom.Polygon{}
	case geomtype.MultiPoint:
		n.mp = &geom.MultiPoint{}
	case geomtype.MultiLineString:
		n.mls = &geom.MultiLineString{}
	case geomtype.MultiPolygon:
		n.mpoly = &geom.MultiPolygon{}
	case geomtype.GeometryCollection:
		n.coll = &geom.Collection{}
	default:
		return nil, errors.Wrapf(ErrUnsupportedGeometry, "%v", t)
	}
	return n, nil
}

func (n *node) value() geom.Geometry {
	switch {
	case n.pt != nil:
		return *n.pt
	case n.ls != nil:
		return *n.ls
	case n.poly != nil:
		return *n.poly
	case n.mp != nil:
		return *n.mp
	case n.mls != nil:
		return *n.mls
	case n.mpoly != nil:
		return *n.mpoly
	default:
		return *n.coll
	}
}

// Builder is a geomtype.Consumer that assembles a go-spatial/geom value
// as a reader drives it (spec.md §4.10's "blob -> foreign-geometry"):
// BeginGeometry allocates the node for the variant being entered,
// Coordinates pushes points into the innermost open node, and
// EndGeometry pops a completed node and slots it into its parent via
// addSubGeometry, which knows per parent-variant where a new child goes
// (a polygon's first ring is outer, later rings are holes; every other
// parent variant just appends).
type Builder struct {
	geomtype.BaseConsumer
	stack  []*node
	Result geom.Geometry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

var _ geomtype.Consumer = (*Builder)(nil)

func (b *Builder) Begin() error {
	b.stack = b.stack[:0]
	b.Result = nil
	return nil
}

func (b *Builder) BeginGeometry(h geomtype.Header) error {
	n, err := newNode(h.Type)
	if err != nil {
		return err
	}
	b.stack = append(b.stack, n)
	return nil
}

// Coordinates pushes pointCount-skip/stride new points (X/Y only) into
// the innermost open node's point or line buffer.
func (b *Builder) Coordinates(h geomtype.Header, pointCount int, coords []float64, skip int) error {
	if len(b.stack) == 0 {
		return errors.New("foreign: Coordinates called outside any geometry")
	}
	n := b.stack[len(b.stack)-1]
	stride := h.Ordinates
	newPoints := pointCount - skip/stride
	for i := 0; i < newPoints; i++ {
		base := skip + i*stride
		x, y := coords[base], coords[base+1]
		switch {
		case n.pt != nil:
			*n.pt = geom.Point{x, y}
		case n.ls != nil:
			*n.ls = append(*n.ls, [2]float64{x, y})
		default:
			return errors.Wrapf(ErrUnsupportedGeometry, "coordinates delivered to a %v node", n.t)
		}
	}
	return nil
}

func (b *Builder) EndGeometry(h geomtype.Header) error {
	if len(b.stack) == 0 {
		return errors.New("foreign: EndGeometry with no matching BeginGeometry")
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	value := n.value()

	if len(b.stack) == 0 {
		b.Result = value
		return nil
	}
	return addSubGeometry(b.stack[len(b.stack)-1], n.t, value)
}

// addSubGeometry slots a completed child into parent, per the variant
// rules spec.md §4.10 describes: a polygon ring is appended to its ring
// list (the caller is responsible for ring order — the outer ring always
// arrives first in document order, so no reordering is needed here); any
// other parent variant just appends the child to its slice.
func addSubGeometry(parent *node, childType geomtype.GeomType, value geom.Geometry) error {
	switch parent.t {
	case geomtype.Polygon:
		ring, ok := value.(geom.LineString)
		if !ok {
			return errors.Wrapf(ErrBadChildSlot, "polygon ring must be a LineString, got %T", value)
		}
		*parent.poly = append(*parent.poly, [][2]float64(ring))
	case geomtype.MultiPoint:
		pt, ok := value.(geom.Point)
		if !ok {
			return errors.Wrapf(ErrBadChildSlot, "multipoint member must be a Point, got %T", value)
		}
		*parent.mp = append(*parent.mp, pt)
	case geomtype.MultiLineString:
		ls, ok := value.(geom.LineString)
		if !ok {
			return errors.Wrapf(ErrBadChildSlot, "multilinestring member must be a LineString, got %T", value)
		}
		*parent.mls = append(*parent.mls, ls)
	case geomtype.MultiPolygon:
		p, ok := value.(geom.Polygon)
		if !ok {
			return errors.Wrapf(ErrBadChildSlot, "multipolygon member must be a Polygon, got %T", value)
		}
		*parent.mpoly = append(*parent.mpoly, p)
	case geomtype.GeometryCollection:
		*parent.coll = append(*parent.coll, value)
	default:
		return errors.Wrapf(ErrBadChildSlot, "%v cannot hold a %v child", parent.t, childType)
	}
	return nil
}

func (b *Builder) End() error {
	if len(b.stack) != 0 {
		return errors.New("foreign: End called with unclosed geometry frames")
	}
	return nil
}

// FromBlob decodes a container blob into a go-spatial/geom value. The
// foreign-library error slot (errslot.go) is engaged for the call's
// duration per spec.md §4.10's initialise/drain state machine.
func FromBlob(raw []byte, dialect blob.ContainerDialect) (geom.Geometry, error) {
	release := initialise()
	defer release() //nolint:errcheck

	b := NewBuilder()
	r := blob.NewReader(stream.NewFixed(raw), dialect, nil)
	if err := r.ReadGeometry(b, nil); err != nil {
		report(err)
		return nil, err
	}
	return b.Result, nil
}
