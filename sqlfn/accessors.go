package sqlfn

import (
	"strings"

	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
)

// stSRID implements ST_SRID(geom).
func stSRID(geom []byte) (int64, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return 0, err
	}
	return int64(info.SRID), nil
}

// stSRIDSet implements the two-argument ST_SRID(geom, new_srid): re-emit
// the blob with an updated header, same dialect, same payload.
func stSRIDSet(geom []byte, newSRID int64) ([]byte, error) {
	dialect, err := detectDialect(geom)
	if err != nil {
		return nil, err
	}
	return reencode(geom, dialect, int32(newSRID))
}

func axisMinMax(a geomtype.Axis, want func(geomtype.Axis) float64) (interface{}, error) {
	if !a.Present {
		return nil, nil
	}
	return want(a), nil
}

func stMinX(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.X, func(a geomtype.Axis) float64 { return a.Min })
}

func stMaxX(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.X, func(a geomtype.Axis) float64 { return a.Max })
}

func stMinY(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.Y, func(a geomtype.Axis) float64 { return a.Min })
}

func stMaxY(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.Y, func(a geomtype.Axis) float64 { return a.Max })
}

func stMinZ(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.Z, func(a geomtype.Axis) float64 { return a.Min })
}

func stMaxZ(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.Z, func(a geomtype.Axis) float64 { return a.Max })
}

func stMinM(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.M, func(a geomtype.Axis) float64 { return a.Min })
}

func stMaxM(geom []byte) (interface{}, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return nil, err
	}
	return axisMinMax(info.Env.M, func(a geomtype.Axis) float64 { return a.Max })
}

// stCoordDim implements ST_CoordDim(geom): 2, 3, or 4.
func stCoordDim(geom []byte) (int64, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return 0, err
	}
	return int64(info.Root.Coord.OrdinateCount()), nil
}

// stGeometryType implements ST_GeometryType(geom), returning the
// upper-case canonical keyword from the GLOSSARY normalisation table.
func stGeometryType(geom []byte) (string, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(info.Root.Type.String()), nil
}

// stIsEmpty implements ST_IsEmpty(geom).
func stIsEmpty(geom []byte) (bool, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return false, err
	}
	return info.Env.Empty, nil
}

// stIs3d implements ST_Is3d(geom).
func stIs3d(geom []byte) (bool, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return false, err
	}
	return info.Root.Coord.HasZ(), nil
}

// stIsMeasured implements ST_IsMeasured(geom).
func stIsMeasured(geom []byte) (bool, error) {
	info, err := decodeInfo(geom)
	if err != nil {
		return false, err
	}
	return info.Root.Coord.HasM(), nil
}

// stIsValid implements ST_IsValid(geom) as parser-level validity per
// spec.md §4.9: can the blob be fully decoded and, for the body, can it
// round-trip through a WKB writer without error? This never inspects
// topology (self-intersection, ring orientation); it only confirms the
// blob parses and re-serializes cleanly.
func stIsValid(geom []byte) (bool, error) {
	dialect, err := detectDialect(geom)
	if err != nil {
		return false, nil
	}
	r := blob.NewReader(stream.NewFixed(geom), dialect, nil)
	w := blob.NewWriter(stream.NewGrowable(len(geom)), dialect, wkbDialectFor(dialect), 0)
	if err := r.ReadGeometry(w, nil); err != nil {
		return false, nil
	}
	return true, nil
}
