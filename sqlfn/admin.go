package sqlfn

import (
	"database/sql"

	"github.com/atlasdatatech/gpkggeom/catalog"
)

// admin closes the administration function group over the *sql.DB they
// mutate, per spec.md §4.9's "Administration" group. It is constructed
// once per Register call and its methods are the ones actually handed to
// RegisterFunc. spatialite records which container dialect
// createSpatialIndex and spatialDBType should report, fixed at Register
// time to match the binding's own blob dialect.
type admin struct {
	db         *sql.DB
	spatialite bool
}

// checkGpkg implements CheckGpkg(), which takes no db_name argument: run catalog.Check and render
// its AuditReport as a single diagnostic string, empty on success.
func (a *admin) checkGpkg() (string, error) {
	report := catalog.Check(a.db, catalog.CheckAll)
	return report.Errors().String(), nil
}

// initGpkg implements InitGpkg(), which takes no db_name argument.
func (a *admin) initGpkg() (string, error) {
	report := catalog.Init(a.db)
	return report.Errors().String(), nil
}

// addGeometryColumn implements AddGeometryColumn(table, column, type,
// srs_id, z, m).
func (a *admin) addGeometryColumn(table, column, geomType string, srsID, z, m int64) (bool, error) {
	if err := catalog.AddGeometryColumn(a.db, table, column, geomType, int(srsID), int(z), int(m)); err != nil {
		return false, err
	}
	return true, nil
}

// createTilesTable implements CreateTilesTable(table, srs_id).
func (a *admin) createTilesTable(table string, srsID int64) (bool, error) {
	if err := catalog.CreateTilesTable(a.db, table, int(srsID)); err != nil {
		return false, err
	}
	return true, nil
}

// createSpatialIndex implements CreateSpatialIndex(table, column,
// id_column). The GeoPackage/Spatialite choice follows a.spatialite,
// fixed at Register time to match the hosting database's own dialect.
func (a *admin) createSpatialIndex(table, column, idColumn string) (bool, error) {
	_, err := catalog.CreateSpatialIndex(a.db, table, column, idColumn, a.spatialite, a.envelopeFunc)
	if err != nil {
		return false, err
	}
	return true, nil
}

// spatialDBType implements SpatialDBType(), reporting which container
// dialect this binding was registered for.
func (a *admin) spatialDBType() (string, error) {
	if a.spatialite {
		return "SPATIALITE", nil
	}
	return "GEOPACKAGE", nil
}

// envelopeFunc adapts decodeInfo to catalog.EnvelopeFunc, letting
// CreateSpatialIndex populate its rtree from real geometry envelopes
// without the catalog package importing the codec.
func (a *admin) envelopeFunc(geomBlob []byte) (minX, minY, maxX, maxY float64, empty bool, err error) {
	info, err := decodeInfo(geomBlob)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	if info.Env.Empty || !info.Env.X.Present || !info.Env.Y.Present {
		return 0, 0, 0, 0, true, nil
	}
	return info.Env.X.Min, info.Env.Y.Min, info.Env.X.Max, info.Env.Y.Max, false, nil
}
