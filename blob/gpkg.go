// Package blob implements the GeoPackage-binary and Spatialite-blob
// container formats (C8) that wrap the WKB codec with a header carrying an
// SRID and a coordinate envelope.
package blob

import (
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/pkg/errors"
)

var (
	ErrBadMagic       = errors.New("blob: missing 'GP' magic bytes")
	ErrBadVersion     = errors.New("blob: unsupported blob version")
	ErrBadEnvelope    = errors.New("blob: envelope axis has min > max")
	ErrBadSentinel    = errors.New("blob: empty geometry carries non-NaN envelope sentinel")
	ErrBadEndianFlag  = errors.New("blob: invalid endian flag")
)

// envelopeShape is the 3-bit GeoPackage-binary flags field selecting which
// envelope components follow the SRID.
type envelopeShape uint8

const (
	shapeNone envelopeShape = 0
	shapeXY   envelopeShape = 1
	shapeXYZ  envelopeShape = 2
	shapeXYM  envelopeShape = 3
	shapeXYZM envelopeShape = 4
)

func shapeFor(c geomtype.CoordType) envelopeShape {
	switch c {
	case geomtype.XYZ:
		return shapeXYZ
	case geomtype.XYM:
		return shapeXYM
	case geomtype.XYZM:
		return shapeXYZM
	default:
		return shapeXY
	}
}

// GPHeader is the GeoPackage-binary header (spec.md §4.7/§6): magic "GP",
// version 0, a flags byte encoding empty/shape/endianness, a signed SRID,
// and shape-dependent envelope doubles.
type GPHeader struct {
	SRID  int32
	Shape envelopeShape
	Empty bool
	Env   geomtype.Envelope
	Order stream.ByteOrder
}

// HeaderSize returns the byte length of h's fixed + envelope portion.
func (h GPHeader) HeaderSize() int {
	return 8 + envelopeDoubles(h.Shape)*8
}

func envelopeDoubles(s envelopeShape) int {
	switch s {
	case shapeXY:
		return 4
	case shapeXYZ, shapeXYM:
		return 6
	case shapeXYZM:
		return 8
	default:
		return 0
	}
}

// WriteGPHeader writes h at the stream's current position using the
// stream's configured endianness for the multi-byte fields, recording that
// endianness in bit 0 of the flags byte as the wire format requires.
func WriteGPHeader(s *stream.BinStream, h GPHeader) error {
	if err := s.WriteNU8([]byte{'G', 'P'}); err != nil {
		return err
	}
	if err := s.WriteU8(0); err != nil {
		return err
	}
	var flags uint8
	if h.Empty {
		flags |= 0x10
	}
	flags |= uint8(h.Shape) << 1
	if s.Order() == stream.LittleEndian {
		flags |= 0x01
	}
	if err := s.WriteU8(flags); err != nil {
		return err
	}
	if err := s.WriteI32(h.SRID); err != nil {
		return err
	}
	return writeEnvelopeDoubles(s, h.Shape, h.Env)
}

func writeEnvelopeDoubles(s *stream.BinStream, shape envelopeShape, e geomtype.Envelope) error {
	pairs := envelopeAxes(shape, &e)
	for _, ax := range pairs {
		if err := s.WriteDouble(ax.Min); err != nil {
			return err
		}
		if err := s.WriteDouble(ax.Max); err != nil {
			return err
		}
	}
	return nil
}

func envelopeAxes(shape envelopeShape, e *geomtype.Envelope) []geomtype.Axis {
	switch shape {
	case shapeXY:
		return []geomtype.Axis{e.X, e.Y}
	case shapeXYZ:
		return []geomtype.Axis{e.X, e.Y, e.Z}
	case shapeXYM:
		return []geomtype.Axis{e.X, e.Y, e.M}
	case shapeXYZM:
		return []geomtype.Axis{e.X, e.Y, e.Z, e.M}
	default:
		return nil
	}
}

// ReadGPHeader reads and validates a GeoPackage-binary header, setting the
// stream's byte order from the flags' endian bit before reading the
// SRID/envelope fields in that order.
func ReadGPHeader(s *stream.BinStream) (GPHeader, error) {
	magic, err := s.ReadNU8(2)
	if err != nil {
		return GPHeader{}, errors.Wrap(err, "blob: reading magic")
	}
	if magic[0] != 'G' || magic[1] != 'P' {
		return GPHeader{}, errors.Wrapf(ErrBadMagic, "got %q", magic)
	}
	version, err := s.ReadU8()
	if err != nil {
		return GPHeader{}, errors.Wrap(err, "blob: reading version")
	}
	if version != 0 {
		return GPHeader{}, errors.Wrapf(ErrBadVersion, "%d", version)
	}
	flags, err := s.ReadU8()
	if err != nil {
		return GPHeader{}, errors.Wrap(err, "blob: reading flags")
	}
	if flags&0x01 != 0 {
		s.SetOrder(stream.LittleEndian)
	} else {
		s.SetOrder(stream.BigEndian)
	}
	h := GPHeader{
		Empty: flags&0x10 != 0,
		Shape: envelopeShape((flags >> 1) & 0x07),
		Order: s.Order(),
	}
	srid, err := s.ReadI32()
	if err != nil {
		return GPHeader{}, errors.Wrap(err, "blob: reading SRID")
	}
	h.SRID = srid

	geomtype.Init(&h.Env)
	if err := readEnvelopeDoubles(s, h.Shape, &h.Env); err != nil {
		return GPHeader{}, err
	}
	if err := validateEnvelope(h.Shape, h.Empty, &h.Env); err != nil {
		return GPHeader{}, err
	}
	h.Env.Empty = h.Empty
	return h, nil
}

func readEnvelopeDoubles(s *stream.BinStream, shape envelopeShape, e *geomtype.Envelope) error {
	read := func(ax *geomtype.Axis) error {
		min, err := s.ReadDouble()
		if err != nil {
			return err
		}
		max, err := s.ReadDouble()
		if err != nil {
			return err
		}
		ax.Present = true
		ax.Min, ax.Max = min, max
		return nil
	}
	switch shape {
	case shapeXY:
		return firstErr(read(&e.X), read(&e.Y))
	case shapeXYZ:
		return firstErr(read(&e.X), read(&e.Y), read(&e.Z))
	case shapeXYM:
		return firstErr(read(&e.X), read(&e.Y), read(&e.M))
	case shapeXYZM:
		return firstErr(read(&e.X), read(&e.Y), read(&e.Z), read(&e.M))
	default:
		return nil
	}
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// validateEnvelope implements spec.md §4.7's read-side check: any present
// axis with min > max is invalid, and an empty geometry's axes must be the
// NaN sentinel rather than arbitrary bounds.
func validateEnvelope(shape envelopeShape, empty bool, e *geomtype.Envelope) error {
	check := func(name string, ax geomtype.Axis) error {
		if !ax.Present {
			return nil
		}
		if empty {
			if !isNaN(ax.Min) || !isNaN(ax.Max) {
				return errors.Wrapf(ErrBadSentinel, "axis %s", name)
			}
			return nil
		}
		if ax.Min > ax.Max {
			return errors.Wrapf(ErrBadEnvelope, "axis %s: min %v > max %v", name, ax.Min, ax.Max)
		}
		return nil
	}
	if err := check("X", e.X); err != nil {
		return err
	}
	if err := check("Y", e.Y); err != nil {
		return err
	}
	if err := check("Z", e.Z); err != nil {
		return err
	}
	return check("M", e.M)
}

func isNaN(f float64) bool { return f != f }
