package blob

import (
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
)

// Reader reads a container blob's header, validates its envelope, and
// delegates the WKB payload to an embedded wkb.Reader.
type Reader struct {
	s       *stream.BinStream
	dialect ContainerDialect
	errs    *stream.ErrorStream
}

// NewReader builds a Reader over s for the given container dialect. errs
// may be nil.
func NewReader(s *stream.BinStream, dialect ContainerDialect, errs *stream.ErrorStream) *Reader {
	return &Reader{s: s, dialect: dialect, errs: errs}
}

// Header is the dialect-independent subset of header fields callers
// typically need without re-deriving them from GPHeader/SLHeader.
type Header struct {
	SRID int32
	Env  geomtype.Envelope
}

// ReadGeometry reads the blob header (recording it in hdr if non-nil),
// then parses the WKB payload, driving consumer.
func (r *Reader) ReadGeometry(consumer geomtype.Consumer, hdr *Header) error {
	var srid int32
	var env geomtype.Envelope
	var wkbDialect wkb.Dialect

	switch r.dialect {
	case GeoPackage:
		h, err := ReadGPHeader(r.s)
		if err != nil {
			return r.fail(err, "blob: reading GeoPackage-binary header")
		}
		srid, env = h.SRID, h.Env
		wkbDialect = wkb.ISO
	case SpatialiteBlob:
		h, err := ReadSLHeader(r.s)
		if err != nil {
			return r.fail(err, "blob: reading spatialite-blob header")
		}
		srid, env = h.SRID, h.Env
		wkbDialect = wkb.Spatialite
	default:
		return r.fail(ErrBadMagic, "blob: unknown container dialect %d", r.dialect)
	}

	if hdr != nil {
		hdr.SRID = srid
		hdr.Env = env
	}

	inner := wkb.NewReader(r.s, wkbDialect, r.errs)
	return inner.ReadGeometry(consumer)
}

func (r *Reader) fail(err error, format string, args ...interface{}) error {
	if r.errs != nil {
		r.errs.Append(err.Error())
	}
	return err
}
