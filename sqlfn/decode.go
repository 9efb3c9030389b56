// Package sqlfn implements the SQL-callable function bindings (C10) over
// the blob/wkb/wkt codec and the catalog package: accessors, converters,
// and administration functions, registered on an existing *sql.DB's
// connection via mattn/go-sqlite3's RegisterFunc so they become ordinary
// SQL scalar functions.
package sqlfn

import (
	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/envelope"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
	"github.com/pkg/errors"
)

var (
	// ErrShortBlob is returned for a geometry blob too short to carry any
	// recognizable container header.
	ErrShortBlob = errors.New("sqlfn: blob too short to be a geometry")
	// ErrUnknownContainer is returned when neither the GeoPackage-binary
	// nor Spatialite-blob magic bytes are recognized.
	ErrUnknownContainer = errors.New("sqlfn: unrecognized geometry blob header")
)

// errStopAfterHeader is returned by headerOnlyConsumer.BeginGeometry to
// abort parsing immediately after the root header is known, without
// paying for a full coordinate walk.
var errStopAfterHeader = errors.New("sqlfn: stop after header")

// detectDialect inspects a container blob's leading bytes to pick its
// framing, per spec.md §6: GeoPackage-binary starts "GP", Spatialite-blob
// starts 0x00.
func detectDialect(raw []byte) (blob.ContainerDialect, error) {
	if len(raw) < 2 {
		return 0, ErrShortBlob
	}
	if raw[0] == 'G' && raw[1] == 'P' {
		return blob.GeoPackage, nil
	}
	if raw[0] == 0x00 {
		return blob.SpatialiteBlob, nil
	}
	return 0, ErrUnknownContainer
}

// wkbDialectFor maps a container dialect to the WKB framing its payload
// uses (spec.md §4.7).
func wkbDialectFor(d blob.ContainerDialect) wkb.Dialect {
	if d == blob.SpatialiteBlob {
		return wkb.Spatialite
	}
	return wkb.ISO
}

// headerOnlyConsumer captures the outermost BeginGeometry header and then
// aborts the parse, used to cheaply learn a blob's geometry type and
// coordinate dimensionality without decoding its full coordinate stream.
type headerOnlyConsumer struct {
	geomtype.BaseConsumer
	root geomtype.Header
	set  bool
}

func (c *headerOnlyConsumer) BeginGeometry(h geomtype.Header) error {
	if c.set {
		return nil
	}
	c.root = h
	c.set = true
	return errStopAfterHeader
}

// geomInfo is the decoded summary of a geometry blob that every accessor
// function needs: its SRID, root header, full envelope, and the container
// dialect it arrived in.
type geomInfo struct {
	SRID    int32
	Root    geomtype.Header
	Env     geomtype.Envelope
	Dialect blob.ContainerDialect
}

// envelopeComplete reports whether e already carries every axis c's
// coordinate type requires, so decodeInfo can skip the full coordinate
// walk spec.md §4.9 calls "compute it lazily".
func envelopeComplete(e geomtype.Envelope, c geomtype.CoordType) bool {
	if !e.X.Present || !e.Y.Present {
		return false
	}
	if c.HasZ() && !e.Z.Present {
		return false
	}
	if c.HasM() && !e.M.Present {
		return false
	}
	return true
}

// decodeInfo reads raw's container header and root geometry header, then
// fills in the envelope from the header if it is already complete for the
// geometry's coordinate type, falling back to a full accumulator pass
// (spec.md §4.9: "if an envelope axis is missing, compute it lazily by
// running the WKB reader with an envelope-filling consumer").
func decodeInfo(raw []byte) (*geomInfo, error) {
	dialect, err := detectDialect(raw)
	if err != nil {
		return nil, err
	}

	hdr := &blob.Header{}
	hc := &headerOnlyConsumer{}
	r := blob.NewReader(stream.NewFixed(raw), dialect, nil)
	if err := r.ReadGeometry(hc, hdr); err != nil && err != errStopAfterHeader {
		return nil, err
	}
	if !hc.set {
		return nil, errors.New("sqlfn: geometry blob carries no geometry node")
	}

	env := hdr.Env
	if !envelopeComplete(env, hc.root.Coord) {
		acc := envelope.NewAccumulator()
		r2 := blob.NewReader(stream.NewFixed(raw), dialect, nil)
		if err := r2.ReadGeometry(acc, nil); err != nil {
			return nil, err
		}
		env = acc.Env
	}

	return &geomInfo{SRID: hdr.SRID, Root: hc.root, Env: env, Dialect: dialect}, nil
}

// reencode decodes raw as a geometry blob and re-emits it under dialect
// with the given SRID, reusing the blob.Writer's two-pass header patching
// so ST_SRID(geom, new_srid) and dialect conversions are plain
// reader-drives-writer pipelines.
func reencode(raw []byte, dialect blob.ContainerDialect, srid int32) ([]byte, error) {
	srcDialect, err := detectDialect(raw)
	if err != nil {
		return nil, err
	}
	out := stream.NewGrowable(len(raw) + 16)
	w := blob.NewWriter(out, dialect, wkbDialectFor(dialect), srid)
	r := blob.NewReader(stream.NewFixed(raw), srcDialect, nil)
	if err := r.ReadGeometry(w, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
