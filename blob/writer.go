package blob

import (
	"github.com/atlasdatatech/gpkggeom/envelope"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
	"github.com/pkg/errors"
)

// ContainerDialect selects which blob header framing a Writer/Reader uses.
type ContainerDialect uint8

const (
	GeoPackage ContainerDialect = iota
	SpatialiteBlob
)

// Writer is a geomtype.Consumer that delegates every begin_geometry /
// coordinates / end_geometry to an embedded wkb.Writer while simultaneously
// maintaining an envelope.Accumulator on the side (spec.md §4.7's "Writer
// orchestration"). Header space is reserved at the outermost BeginGeometry
// and patched in at End, once the final envelope and empty flag are known.
//
// A root Point geometry is always written with envelope shape "none": the
// header's reserved size cannot change after it is written (the codec only
// patches values in place, it never inserts), so whether the point is
// empty cannot retroactively grow a header that was sized before any
// coordinate arrived.
type Writer struct {
	s       *stream.BinStream
	dialect ContainerDialect
	srid    int32
	wkbw    *wkb.Writer
	acc     *envelope.Accumulator
	depth   int
	shape   envelopeShape
}

var _ geomtype.Consumer = (*Writer)(nil)

// NewWriter returns a blob Writer over s for the given container dialect
// and SRID. wkbDialect selects the WKB framing used for the payload
// (normally wkb.ISO for GeoPackage, wkb.Spatialite for SpatialiteBlob).
func NewWriter(s *stream.BinStream, dialect ContainerDialect, wkbDialect wkb.Dialect, srid int32) *Writer {
	return &Writer{
		s:       s,
		dialect: dialect,
		srid:    srid,
		wkbw:    wkb.NewWriter(s, wkbDialect),
		acc:     envelope.NewAccumulator(),
	}
}

func (w *Writer) Begin() error {
	w.depth = 0
	if err := w.wkbw.Begin(); err != nil {
		return err
	}
	return w.acc.Begin()
}

func (w *Writer) BeginGeometry(h geomtype.Header) error {
	isRoot := w.depth == 0
	w.depth++

	if isRoot {
		switch w.dialect {
		case GeoPackage:
			if h.Type == geomtype.Point {
				w.shape = shapeNone
			} else {
				w.shape = shapeFor(h.Coord)
			}
			size := 8 + envelopeDoubles(w.shape)*8
			if err := w.s.RelSeek(size); err != nil {
				return err
			}
		case SpatialiteBlob:
			if err := w.s.RelSeek(slHeaderSize); err != nil {
				return err
			}
		}
	}

	if err := w.wkbw.BeginGeometry(h); err != nil {
		return err
	}
	return w.acc.BeginGeometry(h)
}

func (w *Writer) Coordinates(h geomtype.Header, pointCount int, coords []float64, skip int) error {
	if err := w.wkbw.Coordinates(h, pointCount, coords, skip); err != nil {
		return err
	}
	return w.acc.Coordinates(h, pointCount, coords, skip)
}

func (w *Writer) EndGeometry(h geomtype.Header) error {
	if err := w.wkbw.EndGeometry(h); err != nil {
		return err
	}
	if err := w.acc.EndGeometry(h); err != nil {
		return err
	}
	w.depth--
	return nil
}

// End finalizes the envelope (which may flip Empty to true and fill NaN
// sentinels), then patches the header reserved at BeginGeometry in place
// at offset 0, restoring the stream's position to the end of the payload.
func (w *Writer) End() error {
	if err := w.wkbw.End(); err != nil {
		return err
	}
	if err := w.acc.End(); err != nil {
		return err
	}

	end := w.s.Length()
	if err := w.s.Seek(0); err != nil {
		return err
	}

	switch w.dialect {
	case GeoPackage:
		err := WriteGPHeader(w.s, GPHeader{
			SRID:  w.srid,
			Shape: w.shape,
			Empty: w.acc.Env.Empty,
			Env:   w.acc.Env,
			Order: w.s.Order(),
		})
		if err != nil {
			return err
		}
	case SpatialiteBlob:
		err := WriteSLHeader(w.s, SLHeader{
			SRID:  w.srid,
			Env:   w.acc.Env,
			Order: w.s.Order(),
		})
		if err != nil {
			return err
		}
	default:
		return errors.Errorf("blob: unknown container dialect %d", w.dialect)
	}

	return w.s.Seek(end)
}
