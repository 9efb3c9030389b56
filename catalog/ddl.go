package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/atlasdatatech/gpkggeom/internal/log"
	"github.com/pkg/errors"
)

var (
	ErrUnknownGeometryType = errors.New("catalog: unrecognized geometry type string")
	ErrBadZMFlag           = errors.New("catalog: z/m flag must be 0, 1, or 2")
	ErrNoSuchTable         = errors.New("catalog: host table does not exist")
	ErrSRIDNotRegistered   = errors.New("catalog: srs_id is not registered in gpkg_spatial_ref_sys")
)

// geometryTypeNames is the GLOSSARY's case-insensitive normalisation
// table: recognized geometry-type strings mapped to their canonical
// spelling, with an `st_` prefix stripped before lookup.
var geometryTypeNames = map[string]string{
	"geometry":           "GEOMETRY",
	"point":              "POINT",
	"linestring":         "LINESTRING",
	"polygon":            "POLYGON",
	"multipoint":         "MULTIPOINT",
	"multilinestring":    "MULTILINESTRING",
	"multipolygon":       "MULTIPOLYGON",
	"geometrycollection": "GEOMETRYCOLLECTION",
	"geomcollection":     "GEOMETRYCOLLECTION",
	"curve":              "CURVE",
	"surface":            "SURFACE",
	"curvepolygon":       "CURVEPOLYGON",
	"circularstring":     "CIRCULARSTRING",
	"compoundcurve":      "COMPOUNDCURVE",
	"multicurve":         "MULTICURVE",
	"multisurface":       "MULTISURFACE",
}

// normalizeGeometryType resolves s (case-insensitively, optionally
// "st_"-prefixed) to its canonical geom_type spelling.
func normalizeGeometryType(s string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	lower = strings.TrimPrefix(lower, "st_")
	canon, ok := geometryTypeNames[lower]
	if !ok {
		return "", errors.Wrapf(ErrUnknownGeometryType, "%q", s)
	}
	return canon, nil
}

// AddGeometryColumn implements spec.md §4.8's add_geometry_column: it
// validates the geometry-type string and Z/M flags, confirms the host
// table exists and srs_id is registered, adds the column, and inserts a
// gpkg_geometry_columns descriptor row.
func AddGeometryColumn(db *sql.DB, table, column, geomType string, srsID int, z, m int) error {
	canon, err := normalizeGeometryType(geomType)
	if err != nil {
		return err
	}
	if z < 0 || z > 2 {
		return errors.Wrapf(ErrBadZMFlag, "z=%d", z)
	}
	if m < 0 || m > 2 {
		return errors.Wrapf(ErrBadZMFlag, "m=%d", m)
	}

	exists, err := tableExists(db, table)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(ErrNoSuchTable, "%s", table)
	}

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM gpkg_spatial_ref_sys WHERE srs_id = ?`, srsID).Scan(&n); err != nil {
		return errors.Wrap(err, "catalog: checking srs_id")
	}
	if n == 0 {
		return errors.Wrapf(ErrSRIDNotRegistered, "%d", srsID)
	}

	return runInSavepoint(db, func() error {
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s blob", table, column)
		if _, err := db.Exec(alter); err != nil {
			return errors.Wrapf(err, "catalog: adding column %s.%s", table, column)
		}

		insert := `INSERT INTO gpkg_geometry_columns
			(table_name, column_name, geometry_type, srs_id, z, m)
			VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := db.Exec(insert, table, column, canon, srsID, z, m); err != nil {
			return errors.Wrapf(err, "catalog: registering geometry column %s.%s", table, column)
		}

		log.Debugf("catalog: added geometry column %s.%s (%s, srs_id=%d, z=%d, m=%d)", table, column, canon, srsID, z, m)
		return installGeometryConstraintTriggers(db, table, column)
	})
}

// CreateTilesTable creates a per-zoom-pyramid tile table with the fixed
// column set in TilesTableColumns and registers it in gpkg_contents,
// inside a single savepoint.
func CreateTilesTable(db *sql.DB, table string, srsID int) error {
	return runInSavepoint(db, func() error {
		t := Table{Name: table, Columns: TilesTableColumns}
		if _, err := db.Exec(createTableSQL(t)); err != nil {
			return errors.Wrapf(err, "catalog: creating tiles table %s", table)
		}
		insert := `INSERT INTO gpkg_contents (table_name, data_type, identifier, srs_id) VALUES (?, 'tiles', ?, ?)`
		if _, err := db.Exec(insert, table, table, srsID); err != nil {
			return errors.Wrapf(err, "catalog: registering tiles table %s", table)
		}
		return nil
	})
}

// installGeometryConstraintTriggers installs Spatialite-style constraint
// triggers on insert and update of column; AddGeometryColumn installs them
// for every backend. Rather than a GeometryConstraints function they call
// the ST_IsValid accessor registered by sqlfn, and RAISE(ABORT, ...) when a
// non-null geometry fails it.
func installGeometryConstraintTriggers(db *sql.DB, table, column string) error {
	for _, event := range []string{"INSERT", "UPDATE OF " + column} {
		name := fmt.Sprintf("trigger_%s_%s_%s", table, column, strings.Fields(event)[0])
		name = strings.ToLower(name)
		stmt := fmt.Sprintf(`
			CREATE TRIGGER %s AFTER %s ON %s
			FOR EACH ROW WHEN NEW.%s IS NOT NULL AND ST_IsValid(NEW.%s) = 0
			BEGIN
				SELECT RAISE(ABORT, 'invalid geometry constraint on %s.%s');
			END`, name, event, table, column, column, table, column)
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "catalog: installing constraint trigger on %s.%s", table, column)
		}
	}
	return nil
}
