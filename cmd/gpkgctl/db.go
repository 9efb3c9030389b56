package main

import (
	"database/sql"

	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/catalog"
	"github.com/atlasdatatech/gpkggeom/config"
	"github.com/atlasdatatech/gpkggeom/envelope"
	"github.com/atlasdatatech/gpkggeom/sqlfn"
	"github.com/atlasdatatech/gpkggeom/stream"
	_ "github.com/mattn/go-sqlite3"
)

// dialectOf maps a config dialect name to the container dialect sqlfn and
// catalog need; unrecognized names fall back to GeoPackage, config.Load's
// own default.
func dialectOf(name string) blob.ContainerDialect {
	if name == "spatialite" {
		return blob.SpatialiteBlob
	}
	return blob.GeoPackage
}

// openDB opens cfg's database and registers the SQL-callable geometry
// functions on it, giving every subcommand the same ST_*/AddGeometryColumn
// surface a SQL client would see.
func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := sqlfn.Register(db, dialectOf(cfg.Database.Dialect)); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// blobEnvelope is the catalog.EnvelopeFunc createSpatialIndexCmd drives
// catalog.CreateSpatialIndex with: a full coordinate walk through an
// envelope.Accumulator, the simplest correct implementation for a CLI
// that isn't on sqlfn's SQL-call-rate hot path.
func blobEnvelope(dialect blob.ContainerDialect) catalog.EnvelopeFunc {
	return func(geomBlob []byte) (minX, minY, maxX, maxY float64, empty bool, err error) {
		acc := envelope.NewAccumulator()
		r := blob.NewReader(stream.NewFixed(geomBlob), dialect, nil)
		if err := r.ReadGeometry(acc, nil); err != nil {
			return 0, 0, 0, 0, false, err
		}
		env := acc.Env
		return env.X.Min, env.Y.Min, env.X.Max, env.Y.Max, env.Empty, nil
	}
}
