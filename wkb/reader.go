package wkb

import (
	"math"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/pkg/errors"
)

// Reader is a recursive-descent WKB parser that drives a geomtype.Consumer.
type Reader struct {
	s       *stream.BinStream
	dialect Dialect
	errs    *stream.ErrorStream
}

// NewReader builds a Reader over s using the given dialect. errs may be
// nil; if non-nil, format errors are also appended there for the SQL host.
func NewReader(s *stream.BinStream, dialect Dialect, errs *stream.ErrorStream) *Reader {
	return &Reader{s: s, dialect: dialect, errs: errs}
}

func (r *Reader) fail(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if r.errs != nil {
		r.errs.Append(wrapped.Error())
	}
	return wrapped
}

// ReadGeometry calls consumer.Begin, parses exactly one top-level
// geometry, and calls consumer.End. In the Spatialite dialect it also
// consumes the trailing 0xFE byte.
func (r *Reader) ReadGeometry(consumer geomtype.Consumer) error {
	if err := consumer.Begin(); err != nil {
		return err
	}
	if _, err := r.parseGeometry(consumer, 0, nil); err != nil {
		return err
	}
	if r.dialect == Spatialite {
		b, err := r.s.ReadU8()
		if err != nil {
			return r.fail(err, "reading spatialite trailer")
		}
		if b != spatialiteTrailer {
			return r.fail(ErrBadTrailer, "expected 0xFE trailer, got 0x%02x", b)
		}
	}
	return consumer.End()
}

// parseGeometry reads one framed geometry node: marker/endian byte, type
// code, dispatches to a body reader, and emits BeginGeometry/EndGeometry
// around it. parentCoord, when non-nil, must match the parsed coord type.
func (r *Reader) parseGeometry(consumer geomtype.Consumer, depth int, parentCoord *geomtype.CoordType) (geomtype.Header, error) {
	if depth > geomtype.MaxDepth {
		return geomtype.Header{}, r.fail(ErrDepthOverflow, "depth %d exceeds max %d", depth, geomtype.MaxDepth)
	}

	marker, err := r.s.ReadU8()
	if err != nil {
		return geomtype.Header{}, r.fail(err, "reading geometry marker byte")
	}
	switch r.dialect {
	case ISO:
		switch marker {
		case 0:
			r.s.SetOrder(stream.BigEndian)
		case 1:
			r.s.SetOrder(stream.LittleEndian)
		default:
			return geomtype.Header{}, r.fail(ErrBadEndianByte, "byte 0x%02x", marker)
		}
	case Spatialite:
		if marker != spatialiteSubMarker {
			return geomtype.Header{}, r.fail(ErrBadMarker, "byte 0x%02x", marker)
		}
	}

	code, err := r.s.ReadU32()
	if err != nil {
		return geomtype.Header{}, r.fail(err, "reading geometry type code")
	}
	gtype, ctype, err := fromTypeCode(code)
	if err != nil {
		return geomtype.Header{}, r.fail(err, "type code %d", code)
	}
	if parentCoord != nil && *parentCoord != ctype {
		return geomtype.Header{}, r.fail(ErrDimMismatch, "parent coord %v, child coord %v", *parentCoord, ctype)
	}

	h := geomtype.NewHeader(gtype, ctype)
	if err := consumer.BeginGeometry(h); err != nil {
		return h, err
	}

	if err := r.readBody(consumer, h, depth); err != nil {
		return h, err
	}

	if err := consumer.EndGeometry(h); err != nil {
		return h, err
	}
	return h, nil
}

func (r *Reader) readBody(consumer geomtype.Consumer, h geomtype.Header, depth int) error {
	switch h.Type {
	case geomtype.Point:
		return r.readPoint(consumer, h)
	case geomtype.LineString:
		return r.readLineStringBody(consumer, h, false)
	case geomtype.CircularString:
		return r.readLineStringBody(consumer, h, true)
	case geomtype.Polygon:
		return r.readPolygon(consumer, h)
	case geomtype.CurvePolygon:
		return r.readCurvePolygon(consumer, h, depth)
	case geomtype.CompoundCurve:
		return r.readCompoundCurve(consumer, h, depth)
	case geomtype.MultiPoint:
		return r.readMultiGeom(consumer, h, depth, geomtype.Point)
	case geomtype.MultiLineString:
		return r.readMultiGeom(consumer, h, depth, geomtype.LineString)
	case geomtype.MultiPolygon:
		return r.readMultiGeom(consumer, h, depth, geomtype.Polygon)
	case geomtype.GeometryCollection:
		return r.readCollection(consumer, h, depth)
	default:
		return r.fail(ErrUnknownType, "%v has no body reader", h.Type)
	}
}

// readPoint reads header.Ordinates doubles. If all are NaN, no
// Coordinates callback is emitted (an empty point).
func (r *Reader) readPoint(consumer geomtype.Consumer, h geomtype.Header) error {
	coords := make([]float64, h.Ordinates)
	allNaN := true
	for i := range coords {
		v, err := r.s.ReadDouble()
		if err != nil {
			return r.fail(err, "reading point ordinate %d", i)
		}
		coords[i] = v
		if !math.IsNaN(v) {
			allNaN = false
		}
	}
	if allNaN {
		return nil
	}
	return consumer.Coordinates(h, 1, coords, 0)
}

// readLineStringBody reads a point count then streams coordinates in
// batches of up to maxBatch points. When isArc, arity is checked
// (count == 0 or (count-3) mod 2 == 0) and batches are kept odd-sized so
// triplets are never split, with the last point of a batch carried
// forward as the skip prefix of the next.
func (r *Reader) readLineStringBody(consumer geomtype.Consumer, h geomtype.Header, isArc bool) error {
	count32, err := r.s.ReadU32()
	if err != nil {
		return r.fail(err, "reading point count")
	}
	count := int(count32)
	if isArc && count != 0 && (count-3)%2 != 0 {
		return r.fail(ErrBadArity, "circular string point count %d", count)
	}
	return r.readPointBatches(consumer, h, count, isArc)
}

// readRingBody reads a linear ring that appears bare inside a Polygon: a
// count then coordinates, with no marker/type byte of its own.
func (r *Reader) readRingBody(consumer geomtype.Consumer, parentCoord geomtype.CoordType) error {
	h := geomtype.NewHeader(geomtype.LinearRing, parentCoord)
	if err := consumer.BeginGeometry(h); err != nil {
		return err
	}
	if err := r.readLineStringBody(consumer, h, false); err != nil {
		return err
	}
	return consumer.EndGeometry(h)
}

func (r *Reader) readPointBatches(consumer geomtype.Consumer, h geomtype.Header, count int, isArc bool) error {
	if count == 0 {
		return nil
	}
	stride := h.Ordinates
	read := 0
	var carryPt []float64 // last point of previous batch, stride floats
	for read < count {
		batchCap := maxBatch
		if isArc && batchCap%2 == 0 {
			batchCap--
		}
		carry := 0
		if isArc && carryPt != nil {
			carry = 1
		}
		newPoints := batchCap - carry
		if read+newPoints > count {
			newPoints = count - read
		}
		batch := make([]float64, (carry+newPoints)*stride)
		if carry == 1 {
			copy(batch[:stride], carryPt)
		}
		for i := 0; i < newPoints; i++ {
			for o := 0; o < stride; o++ {
				v, err := r.s.ReadDouble()
				if err != nil {
					return r.fail(err, "reading coordinate batch")
				}
				batch[(carry+i)*stride+o] = v
			}
		}
		if err := consumer.Coordinates(h, carry+newPoints, batch, carry*stride); err != nil {
			return err
		}
		read += newPoints
		if isArc && read < count {
			carryPt = batch[len(batch)-stride:]
		} else {
			carryPt = nil
		}
	}
	return nil
}

func (r *Reader) readPolygon(consumer geomtype.Consumer, h geomtype.Header) error {
	ringCount, err := r.s.ReadU32()
	if err != nil {
		return r.fail(err, "reading ring count")
	}
	for i := uint32(0); i < ringCount; i++ {
		if err := r.readRingBody(consumer, h.Coord); err != nil {
			return err
		}
	}
	return nil
}

// readCurvePolygon reads a ring count then, for each child, a fully
// framed geometry restricted to LineString, CircularString, or
// CompoundCurve with a matching coordinate type.
func (r *Reader) readCurvePolygon(consumer geomtype.Consumer, h geomtype.Header, depth int) error {
	childCount, err := r.s.ReadU32()
	if err != nil {
		return r.fail(err, "reading curve polygon child count")
	}
	coord := h.Coord
	for i := uint32(0); i < childCount; i++ {
		ch, err := r.parseGeometry(consumer, depth+1, &coord)
		if err != nil {
			return err
		}
		switch ch.Type {
		case geomtype.LineString, geomtype.CircularString, geomtype.CompoundCurve:
		default:
			return r.fail(ErrDisallowedChild, "curve polygon child %v", ch.Type)
		}
	}
	return nil
}

// readCompoundCurve reads a child count then, for each child, a fully
// framed geometry restricted to LineString or CircularString.
func (r *Reader) readCompoundCurve(consumer geomtype.Consumer, h geomtype.Header, depth int) error {
	childCount, err := r.s.ReadU32()
	if err != nil {
		return r.fail(err, "reading compound curve child count")
	}
	coord := h.Coord
	for i := uint32(0); i < childCount; i++ {
		ch, err := r.parseGeometry(consumer, depth+1, &coord)
		if err != nil {
			return err
		}
		switch ch.Type {
		case geomtype.LineString, geomtype.CircularString:
		default:
			return r.fail(ErrDisallowedChild, "compound curve child %v", ch.Type)
		}
	}
	return nil
}

// readMultiGeom reads a child count then, for each child, a fully framed
// geometry whose type must equal want and whose coord type must match
// the parent.
func (r *Reader) readMultiGeom(consumer geomtype.Consumer, h geomtype.Header, depth int, want geomtype.GeomType) error {
	childCount, err := r.s.ReadU32()
	if err != nil {
		return r.fail(err, "reading multi-geometry child count")
	}
	coord := h.Coord
	for i := uint32(0); i < childCount; i++ {
		ch, err := r.parseGeometry(consumer, depth+1, &coord)
		if err != nil {
			return err
		}
		if ch.Type != want {
			return r.fail(ErrDisallowedChild, "expected %v, got %v", want, ch.Type)
		}
	}
	return nil
}

// readCollection reads a child count then, for each child, a fully framed
// geometry of any type with a matching coord type.
func (r *Reader) readCollection(consumer geomtype.Consumer, h geomtype.Header, depth int) error {
	childCount, err := r.s.ReadU32()
	if err != nil {
		return r.fail(err, "reading collection child count")
	}
	coord := h.Coord
	for i := uint32(0); i < childCount; i++ {
		if _, err := r.parseGeometry(consumer, depth+1, &coord); err != nil {
			return err
		}
	}
	return nil
}
