package sqlfn

import (
	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
	"github.com/atlasdatatech/gpkggeom/wkt"
	"golang.org/x/text/language"
)

// stAsBinary implements ST_AsBinary(geom): strip the container header and
// re-emit the payload as plain ISO WKB, regardless of the geometry's
// storage dialect.
func stAsBinary(geom []byte) ([]byte, error) {
	dialect, err := detectDialect(geom)
	if err != nil {
		return nil, err
	}
	out := stream.NewGrowable(len(geom))
	w := wkb.NewWriter(out, wkb.ISO)
	r := blob.NewReader(stream.NewFixed(geom), dialect, nil)
	if err := r.ReadGeometry(w, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// stAsText implements ST_AsText(geom) (alias WKTToSQL run in reverse):
// decode the container blob and drive a wkt.Writer.
func stAsText(geom []byte) (string, error) {
	dialect, err := detectDialect(geom)
	if err != nil {
		return "", err
	}
	w := wkt.NewWriter(language.Und)
	r := blob.NewReader(stream.NewFixed(geom), dialect, nil)
	if err := r.ReadGeometry(w, nil); err != nil {
		return "", err
	}
	return w.String(), nil
}

// stGeomFromWKB implements the two-argument ST_GeomFromWKB(wkb, srid):
// wraps a bare ISO-WKB payload in a GeoPackage-binary container
// header, computing the envelope along the way.
func stGeomFromWKB(raw []byte, srid int64) ([]byte, error) {
	out := stream.NewGrowable(len(raw) + 56)
	w := blob.NewWriter(out, blob.GeoPackage, wkb.ISO, int32(srid))
	r := wkb.NewReader(stream.NewFixed(raw), wkb.ISO, nil)
	if err := r.ReadGeometry(w); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// stGeomFromWKBNoSRID is the one-argument ST_GeomFromWKB(wkb), defaulting
// SRID to 0 ("undefined geographic"), one of the two rows Init seeds into
// gpkg_spatial_ref_sys.
func stGeomFromWKBNoSRID(raw []byte) ([]byte, error) {
	return stGeomFromWKB(raw, 0)
}

// stWKBFromText implements ST_WKBFromText(wkt) → wkb: parse WKT, emit
// plain ISO WKB with no container header.
func stWKBFromText(text string) ([]byte, error) {
	rd, err := wkt.NewReader(text, language.Und)
	if err != nil {
		return nil, err
	}
	out := stream.NewGrowable(len(text))
	w := wkb.NewWriter(out, wkb.ISO)
	if err := rd.ReadGeometry(w); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// stGeomFromText implements the two-argument ST_GeomFromText(wkt, srid):
// parse WKT and wrap the result in a GeoPackage-binary container.
func stGeomFromText(text string, srid int64) ([]byte, error) {
	rd, err := wkt.NewReader(text, language.Und)
	if err != nil {
		return nil, err
	}
	out := stream.NewGrowable(len(text) + 56)
	w := blob.NewWriter(out, blob.GeoPackage, wkb.ISO, int32(srid))
	if err := rd.ReadGeometry(w); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func stGeomFromTextNoSRID(text string) ([]byte, error) {
	return stGeomFromText(text, 0)
}
