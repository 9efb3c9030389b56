package foreign

import (
	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
	"github.com/go-spatial/geom"
	"github.com/pkg/errors"
)

// Encode drives consumer from g (spec.md §4.10's "foreign-geometry ->
// blob" direction), wrapping the visit in the Begin/End pair every
// Consumer expects around a geometry stream.
func Encode(g geom.Geometry, consumer geomtype.Consumer) error {
	if err := consumer.Begin(); err != nil {
		return err
	}
	if err := visit(g, consumer); err != nil {
		return err
	}
	return consumer.End()
}

// visit dispatches on g's concrete go-spatial/geom type, the mirror image
// of tobridge.go's newNode switch on geomtype.GeomType.
func visit(g geom.Geometry, consumer geomtype.Consumer) error {
	switch v := g.(type) {
	case geom.Point:
		return visitPoint(v, consumer)
	case geom.LineString:
		return visitLineString(v, geomtype.LineString, consumer)
	case geom.Polygon:
		return visitPolygon(v, consumer)
	case geom.MultiPoint:
		return visitMulti(len(v), geomtype.MultiPoint, consumer, func(i int) error {
			return visitPoint(v[i], consumer)
		})
	case geom.MultiLineString:
		return visitMulti(len(v), geomtype.MultiLineString, consumer, func(i int) error {
			return visitLineString(v[i], geomtype.LineString, consumer)
		})
	case geom.MultiPolygon:
		return visitMulti(len(v), geomtype.MultiPolygon, consumer, func(i int) error {
			return visitPolygon(v[i], consumer)
		})
	case geom.Collection:
		return visitMulti(len(v), geomtype.GeometryCollection, consumer, func(i int) error {
			return visit(v[i], consumer)
		})
	default:
		return errors.Wrapf(ErrUnsupportedGeometry, "%T", g)
	}
}

func visitPoint(p geom.Point, consumer geomtype.Consumer) error {
	h := geomtype.NewHeader(geomtype.Point, geomtype.XY)
	if err := consumer.BeginGeometry(h); err != nil {
		return err
	}
	if err := consumer.Coordinates(h, 1, []float64{p[0], p[1]}, 0); err != nil {
		return err
	}
	return consumer.EndGeometry(h)
}

// visitLineString emits ls tagged as t, so the same body serves both
// standalone LineStrings and a polygon's LinearRing members.
func visitLineString(ls geom.LineString, t geomtype.GeomType, consumer geomtype.Consumer) error {
	h := geomtype.NewHeader(t, geomtype.XY)
	if err := consumer.BeginGeometry(h); err != nil {
		return err
	}
	coords := make([]float64, 0, 2*len(ls))
	for _, pt := range ls {
		coords = append(coords, pt[0], pt[1])
	}
	if len(ls) > 0 {
		if err := consumer.Coordinates(h, len(ls), coords, 0); err != nil {
			return err
		}
	}
	return consumer.EndGeometry(h)
}

func visitPolygon(p geom.Polygon, consumer geomtype.Consumer) error {
	h := geomtype.NewHeader(geomtype.Polygon, geomtype.XY)
	if err := consumer.BeginGeometry(h); err != nil {
		return err
	}
	for _, ring := range p {
		if err := visitLineString(ring, geomtype.LinearRing, consumer); err != nil {
			return err
		}
	}
	return consumer.EndGeometry(h)
}

// visitMulti emits the n-member wrapper header for a multi/collection
// type, running child for each member index in between.
func visitMulti(n int, t geomtype.GeomType, consumer geomtype.Consumer, child func(i int) error) error {
	h := geomtype.NewHeader(t, geomtype.XY)
	if err := consumer.BeginGeometry(h); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := child(i); err != nil {
			return err
		}
	}
	return consumer.EndGeometry(h)
}

// ToBlob encodes g as a container blob under dialect with the given SRID,
// engaging the foreign-library error slot (errslot.go) for the call's
// duration per spec.md §4.10.
func ToBlob(g geom.Geometry, dialect blob.ContainerDialect, srid int32) ([]byte, error) {
	release := initialise()
	defer release() //nolint:errcheck

	wkbDialect := wkb.ISO
	if dialect == blob.SpatialiteBlob {
		wkbDialect = wkb.Spatialite
	}

	out := stream.NewGrowable(64)
	w := blob.NewWriter(out, dialect, wkbDialect, srid)
	if err := Encode(g, w); err != nil {
		report(err)
		return nil, err
	}
	return out.Bytes(), nil
}
