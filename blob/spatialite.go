package blob

import (
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/pkg/errors"
)

// SLHeader is the Spatialite-blob header (spec.md §4.7/§6): a fixed 1-byte
// marker, 1-byte endian flag, signed SRID, and a 2D-only envelope —
// original_source/gpkg/spl_geom.c computes minX/minY/maxX/maxY even for
// 3D/4D geometries rather than carrying a Z/M-aware envelope.
type SLHeader struct {
	SRID  int32
	Env   geomtype.Envelope
	Order stream.ByteOrder
}

const slHeaderSize = 1 + 1 + 4 + 4*8

// WriteSLHeader writes h's fixed header, setting the endian-flag byte from
// the stream's current byte order.
func WriteSLHeader(s *stream.BinStream, h SLHeader) error {
	if err := s.WriteU8(0x00); err != nil {
		return err
	}
	var endianByte uint8
	if s.Order() == stream.LittleEndian {
		endianByte = 1
	}
	if err := s.WriteU8(endianByte); err != nil {
		return err
	}
	if err := s.WriteI32(h.SRID); err != nil {
		return err
	}
	minX, maxX, minY, maxY := 0.0, 0.0, 0.0, 0.0
	if h.Env.X.Present {
		minX, maxX = h.Env.X.Min, h.Env.X.Max
	}
	if h.Env.Y.Present {
		minY, maxY = h.Env.Y.Min, h.Env.Y.Max
	}
	for _, v := range []float64{minX, minY, maxX, maxY} {
		if err := s.WriteDouble(v); err != nil {
			return err
		}
	}
	return nil
}

// ReadSLHeader reads and validates a Spatialite-blob header, setting the
// stream's byte order from the endian-flag byte.
func ReadSLHeader(s *stream.BinStream) (SLHeader, error) {
	marker, err := s.ReadU8()
	if err != nil {
		return SLHeader{}, errors.Wrap(err, "blob: reading spatialite marker")
	}
	if marker != 0x00 {
		return SLHeader{}, errors.Wrapf(ErrBadMagic, "expected 0x00 marker, got 0x%02x", marker)
	}
	endianByte, err := s.ReadU8()
	if err != nil {
		return SLHeader{}, errors.Wrap(err, "blob: reading endian flag")
	}
	switch endianByte {
	case 0:
		s.SetOrder(stream.BigEndian)
	case 1:
		s.SetOrder(stream.LittleEndian)
	default:
		return SLHeader{}, errors.Wrapf(ErrBadEndianFlag, "0x%02x", endianByte)
	}
	h := SLHeader{Order: s.Order()}
	srid, err := s.ReadI32()
	if err != nil {
		return SLHeader{}, errors.Wrap(err, "blob: reading SRID")
	}
	h.SRID = srid

	geomtype.Init(&h.Env)
	minX, err := s.ReadDouble()
	if err != nil {
		return SLHeader{}, err
	}
	minY, err := s.ReadDouble()
	if err != nil {
		return SLHeader{}, err
	}
	maxX, err := s.ReadDouble()
	if err != nil {
		return SLHeader{}, err
	}
	maxY, err := s.ReadDouble()
	if err != nil {
		return SLHeader{}, err
	}
	h.Env.X = geomtype.Axis{Present: true, Min: minX, Max: maxX}
	h.Env.Y = geomtype.Axis{Present: true, Min: minY, Max: maxY}
	if err := validateEnvelope(shapeXY, false, &h.Env); err != nil {
		return SLHeader{}, err
	}
	return h, nil
}
