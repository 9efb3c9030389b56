package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

// CheckFlags selects which of Check's additional passes to skip, beyond
// the always-run schema audit and cross-table referential checks.
type CheckFlags uint8

const (
	CheckAll            CheckFlags = 0
	SkipForeignKeyCheck CheckFlags = 1 << iota
	SkipIntegrityCheck
)

// Check runs spec.md §4.8's read-only check(db, flags): the same schema
// audit as Init, plus cross-table referential integrity (every feature
// table in gpkg_contents registered in gpkg_geometry_columns, every tile
// table registered in gpkg_tile_matrix_set, every referenced srs_id
// resolving in gpkg_spatial_ref_sys) and, unless skipped by flags,
// PRAGMA foreign_key_check and PRAGMA integrity_check.
func Check(db *sql.DB, flags CheckFlags) *AuditReport {
	report := NewAuditReport()

	for _, t := range GeoPackageTables {
		exists, err := tableExists(db, t.Name)
		if err != nil {
			report.errs.Append("%v", err)
			continue
		}
		if !exists {
			if t.Mandatory {
				report.errs.Append("table %s: mandatory table missing", t.Name)
			}
			continue
		}
		auditTable(db, t, report)
	}

	checkFeatureTablesRegistered(db, report)
	checkTileTablesRegistered(db, report)
	checkSRSReferences(db, report)

	if flags&SkipForeignKeyCheck == 0 {
		runPragmaCheck(db, "PRAGMA foreign_key_check", report, nil)
	}
	if flags&SkipIntegrityCheck == 0 {
		runPragmaCheck(db, "PRAGMA integrity_check", report, isIntegrityOK)
	}

	return report
}

func checkFeatureTablesRegistered(db *sql.DB, report *AuditReport) {
	rows, err := db.Query(`
		SELECT c.table_name FROM gpkg_contents c
		WHERE c.data_type = 'features'
		AND NOT EXISTS (
			SELECT 1 FROM gpkg_geometry_columns g WHERE g.table_name = c.table_name
		)`)
	if err != nil {
		report.errs.Append("catalog: checking feature table registration: %v", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			report.errs.Append("catalog: scanning feature table registration: %v", err)
			continue
		}
		report.errs.Append("feature table %s is in gpkg_contents but not gpkg_geometry_columns", name)
	}
}

func checkTileTablesRegistered(db *sql.DB, report *AuditReport) {
	rows, err := db.Query(`
		SELECT c.table_name FROM gpkg_contents c
		WHERE c.data_type = 'tiles'
		AND NOT EXISTS (
			SELECT 1 FROM gpkg_tile_matrix_set s WHERE s.table_name = c.table_name
		)`)
	if err != nil {
		report.errs.Append("catalog: checking tile table registration: %v", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			report.errs.Append("catalog: scanning tile table registration: %v", err)
			continue
		}
		report.errs.Append("tile table %s is in gpkg_contents but not gpkg_tile_matrix_set", name)
	}
}

func checkSRSReferences(db *sql.DB, report *AuditReport) {
	queries := []string{
		`SELECT DISTINCT srs_id FROM gpkg_contents WHERE srs_id IS NOT NULL
			AND srs_id NOT IN (SELECT srs_id FROM gpkg_spatial_ref_sys)`,
		`SELECT DISTINCT srs_id FROM gpkg_geometry_columns
			WHERE srs_id NOT IN (SELECT srs_id FROM gpkg_spatial_ref_sys)`,
	}
	for _, q := range queries {
		rows, err := db.Query(q)
		if err != nil {
			report.errs.Append("catalog: checking srs_id references: %v", err)
			continue
		}
		for rows.Next() {
			var srid int
			if err := rows.Scan(&srid); err != nil {
				report.errs.Append("catalog: scanning srs_id reference: %v", err)
				continue
			}
			report.errs.Append("srs_id %d is referenced but not registered in gpkg_spatial_ref_sys", srid)
		}
		rows.Close()
	}
}

// isIntegrityOK reports whether a single-column PRAGMA integrity_check
// row is the lone "ok" success marker rather than a reported problem.
func isIntegrityOK(vals []interface{}) bool {
	if len(vals) != 1 {
		return false
	}
	s, ok := vals[0].(string)
	return ok && s == "ok"
}

// runPragmaCheck runs a diagnostic PRAGMA and appends one report entry per
// returned row, except rows that okFilter (if non-nil) reports as the
// pragma's own success marker.
func runPragmaCheck(db *sql.DB, pragma string, report *AuditReport, okFilter func([]interface{}) bool) {
	rows, err := db.Query(pragma)
	if err != nil {
		report.errs.Append("%v", errors.Wrapf(err, "catalog: running %s", pragma))
		return
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		report.errs.Append("catalog: reading %s columns: %v", pragma, err)
		return
	}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			report.errs.Append("catalog: scanning %s row: %v", pragma, err)
			continue
		}
		if okFilter != nil && okFilter(vals) {
			continue
		}
		report.errs.Append("%s: %v", pragma, vals)
	}
}
