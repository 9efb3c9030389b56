package wkb

import (
	"math"

	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/pkg/errors"
)

// frame is one entry of the writer's depth-indexed stack: the position a
// geometry's header starts at, and a running count (child geometries for
// collections/polygons, or points for line-shaped geometries) that gets
// patched back into that header once known.
type frame struct {
	start         int
	count         uint32
	header        geomtype.Header
	effectiveType geomtype.GeomType
	bareRing      bool
}

// Writer is a two-pass WKB writer: it is itself a geomtype.Consumer, so
// any reader (wkb.Reader, wkt.Reader, blob.Reader) can drive it directly.
// Each BeginGeometry reserves placeholder header bytes; EndGeometry seeks
// back and patches them once the child/point count is known.
type Writer struct {
	s       *stream.BinStream
	dialect Dialect
	stack   []frame
}

var _ geomtype.Consumer = (*Writer)(nil)

// NewWriter builds a Writer over s (normally a growable stream) for the
// given dialect.
func NewWriter(s *stream.BinStream, dialect Dialect) *Writer {
	return &Writer{s: s, dialect: dialect}
}

func (w *Writer) Begin() error {
	w.stack = w.stack[:0]
	return nil
}

func (w *Writer) End() error {
	return nil
}

// reserveSize returns the number of placeholder bytes a node's header
// occupies: 4 for a bare ring (count only), 5 for a Point (marker+type,
// no count), 9 for anything else (marker+type+count).
func reserveSize(effectiveType geomtype.GeomType, bareRing bool) int {
	switch {
	case bareRing:
		return 4
	case effectiveType == geomtype.Point:
		return 5
	default:
		return 9
	}
}

func (w *Writer) BeginGeometry(h geomtype.Header) error {
	if len(w.stack) > geomtype.MaxDepth {
		return errors.Wrap(ErrDepthOverflow, "wkb writer")
	}

	effectiveType := h.Type
	bareRing := false
	if h.Type == geomtype.LinearRing {
		if len(w.stack) == 0 {
			// A root-level linear ring is silently promoted to LineString.
			effectiveType = geomtype.LineString
		} else {
			bareRing = true
		}
	}

	if len(w.stack) > 0 {
		w.stack[len(w.stack)-1].count++
	}

	f := frame{
		start:         w.s.Position(),
		header:        h,
		effectiveType: effectiveType,
		bareRing:      bareRing,
	}
	w.stack = append(w.stack, f)

	return w.s.RelSeek(reserveSize(effectiveType, bareRing))
}

func (w *Writer) Coordinates(h geomtype.Header, pointCount int, coords []float64, skip int) error {
	if len(w.stack) == 0 {
		return errors.New("wkb: Coordinates called outside any geometry")
	}
	stride := h.Ordinates
	newPoints := pointCount - skip/stride
	for i := 0; i < newPoints; i++ {
		base := skip + i*stride
		for o := 0; o < stride; o++ {
			if err := w.s.WriteDouble(coords[base+o]); err != nil {
				return err
			}
		}
	}
	w.stack[len(w.stack)-1].count += uint32(newPoints)
	return nil
}

func (w *Writer) EndGeometry(h geomtype.Header) error {
	if len(w.stack) == 0 {
		return errors.New("wkb: EndGeometry with no matching BeginGeometry")
	}
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	after := w.s.Position()
	if err := w.s.Seek(f.start); err != nil {
		return err
	}

	if f.bareRing {
		if err := w.s.WriteU32(f.count); err != nil {
			return err
		}
	} else {
		if err := w.writeMarker(); err != nil {
			return err
		}
		code, err := typeCode(f.effectiveType, h.Coord)
		if err != nil {
			return err
		}
		if err := w.s.WriteU32(code); err != nil {
			return err
		}
		if f.effectiveType != geomtype.Point {
			if err := w.s.WriteU32(f.count); err != nil {
				return err
			}
		} else if f.count == 0 {
			// Empty point: write NaN ordinates so it remains parseable.
			for i := 0; i < h.Ordinates; i++ {
				if err := w.s.WriteDouble(math.NaN()); err != nil {
					return err
				}
			}
			// This just grew the stream past the `after` snapshotted above
			// (which predates the NaN payload); re-snapshot so the Seek
			// below doesn't discard what was just written.
			after = w.s.Position()
		}
	}

	if err := w.s.Seek(after); err != nil {
		return err
	}

	if len(w.stack) == 0 {
		if w.dialect == Spatialite {
			if err := w.s.WriteU8(spatialiteTrailer); err != nil {
				return err
			}
		}
		w.s.Flip()
	}
	return nil
}

func (w *Writer) writeMarker() error {
	switch w.dialect {
	case Spatialite:
		return w.s.WriteU8(spatialiteSubMarker)
	default:
		if w.s.Order() == stream.BigEndian {
			return w.s.WriteU8(0)
		}
		return w.s.WriteU8(1)
	}
}
