package sqlfn

import (
	"context"
	"database/sql"

	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// ErrNotSQLite is returned by Register when db's driver connection is not
// a *sqlite3.SQLiteConn (for example, a *sql.DB opened against a
// different driver was passed in by mistake).
var ErrNotSQLite = errors.New("sqlfn: connection is not a mattn/go-sqlite3 connection")

// binding is one (name, fn) pair to install, carried through a slice so
// Register can loop uniformly over accessors, converters, and
// administration functions instead of repeating RegisterFunc calls.
type binding struct {
	name string
	fn   interface{}
	pure bool
}

// Register installs every function in spec.md §4.9 on db's current
// connection via mattn/go-sqlite3's RegisterFunc, reached through
// (*sql.Conn).Raw. Each function is registered twice — once under its
// bare name and once "ST_"-prefixed — since spec.md §6 requires both
// forms, and sqlite3 already matches function names case-insensitively.
//
// dialect selects which container blob format AddGeometryColumn,
// CreateSpatialIndex and SpatialDBType assume for this database; pass
// blob.GeoPackage for ordinary .gpkg files, blob.SpatialiteBlob for a
// Spatialite-compatible database.
func Register(db *sql.DB, dialect blob.ContainerDialect) error {
	conn, err := db.Conn(context.Background())
	if err != nil {
		return errors.Wrap(err, "sqlfn: acquiring connection to register functions")
	}
	defer conn.Close()

	a := &admin{db: db, spatialite: dialect == blob.SpatialiteBlob}

	return conn.Raw(func(driverConn interface{}) error {
		sc, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return ErrNotSQLite
		}
		for _, b := range bindings(a) {
			if err := sc.RegisterFunc(b.name, b.fn, b.pure); err != nil {
				return errors.Wrapf(err, "sqlfn: registering %s", b.name)
			}
			if err := sc.RegisterFunc("st_"+b.name, b.fn, b.pure); err != nil {
				return errors.Wrapf(err, "sqlfn: registering st_%s", b.name)
			}
		}
		return nil
	})
}

// bindings lists every spec.md §4.9 function. Accessors and converters
// are pure (deterministic given their arguments); administration
// functions mutate the database and so are registered as impure.
func bindings(a *admin) []binding {
	return []binding{
		{"srid", stSRID, true},
		{"srid", stSRIDSet, true},
		{"minx", stMinX, true},
		{"maxx", stMaxX, true},
		{"miny", stMinY, true},
		{"maxy", stMaxY, true},
		{"minz", stMinZ, true},
		{"maxz", stMaxZ, true},
		{"minm", stMinM, true},
		{"maxm", stMaxM, true},
		{"coorddim", stCoordDim, true},
		{"geometrytype", stGeometryType, true},
		{"isempty", stIsEmpty, true},
		{"is3d", stIs3d, true},
		{"ismeasured", stIsMeasured, true},
		{"isvalid", stIsValid, true},

		{"asbinary", stAsBinary, true},
		{"astext", stAsText, true},
		{"geomfromwkb", stGeomFromWKBNoSRID, true},
		{"geomfromwkb", stGeomFromWKB, true},
		{"geomfromtext", stGeomFromTextNoSRID, true},
		{"geomfromtext", stGeomFromText, true},
		{"wkbfromtext", stWKBFromText, true},
		// WKBToSQL/WKTToSQL are Spatialite-style synonyms for
		// GeomFromWKB/GeomFromText: external representation in, a geom
		// blob value out (not ST_AsBinary/ST_AsText, despite the name).
		{"wkbtosql", stGeomFromWKBNoSRID, true},
		{"wkbtosql", stGeomFromWKB, true},
		{"wktosql", stGeomFromTextNoSRID, true},
		{"wktosql", stGeomFromText, true},

		{"checkgpkg", a.checkGpkg, false},
		{"initgpkg", a.initGpkg, false},
		{"addgeometrycolumn", a.addGeometryColumn, false},
		{"createtilestable", a.createTilesTable, false},
		{"createspatialindex", a.createSpatialIndex, false},
		{"spatialdbtype", a.spatialDBType, false},
	}
}
