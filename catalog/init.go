package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/atlasdatatech/gpkggeom/internal/log"
	"github.com/pkg/errors"
)

// applicationID is the GeoPackage PRAGMA application_id value (ASCII
// "GP10"), set on init per spec.md §6.
const applicationID = 0x47503130

// tableExists reports whether name is present in sqlite_master.
func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		return false, errors.Wrapf(err, "catalog: checking existence of %s", name)
	}
	return n > 0, nil
}

// createTableSQL renders a CREATE TABLE statement for t.
func createTableSQL(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		var cb strings.Builder
		fmt.Fprintf(&cb, "  %s %s", c.Name, c.Type)
		if c.PrimaryKey && len(pk) == 1 {
			cb.WriteString(" PRIMARY KEY")
		}
		if c.NotNull {
			cb.WriteString(" NOT NULL")
		}
		if c.Unique {
			cb.WriteString(" UNIQUE")
		}
		if c.Default != "" {
			fmt.Fprintf(&cb, " DEFAULT (%s)", c.Default)
		}
		if c.Constraint != "" {
			cb.WriteString(" " + c.Constraint)
		}
		parts[i] = cb.String()
	}
	b.WriteString(strings.Join(parts, ",\n"))
	if len(pk) > 1 {
		fmt.Fprintf(&b, ",\n  PRIMARY KEY (%s)", strings.Join(pk, ", "))
	}
	b.WriteString("\n)")
	return b.String()
}

// createTable creates t and inserts its default rows.
func createTable(db *sql.DB, t Table) error {
	if _, err := db.Exec(createTableSQL(t)); err != nil {
		return errors.Wrapf(err, "catalog: creating table %s", t.Name)
	}
	for _, row := range t.Default {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(row)), ",")
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(t.ColumnNames(), ", "), placeholders)
		if _, err := db.Exec(stmt, row...); err != nil {
			return errors.Wrapf(err, "catalog: inserting default row into %s", t.Name)
		}
	}
	return nil
}

// Init runs spec.md §4.8's init(db) pass: for each table in the fixed
// GeoPackageTables set, create it (with default rows) if it is mandatory
// and absent, or audit its schema if present. It also sets the
// application_id PRAGMA for GeoPackage files.
func Init(db *sql.DB) *AuditReport {
	report := NewAuditReport()

	if _, err := db.Exec(fmt.Sprintf("PRAGMA application_id = %d", applicationID)); err != nil {
		report.errs.Append("setting application_id PRAGMA: %v", err)
	}

	for _, t := range GeoPackageTables {
		exists, err := tableExists(db, t.Name)
		if err != nil {
			report.errs.Append("%v", err)
			continue
		}
		if exists {
			auditTable(db, t, report)
			continue
		}
		if !t.Mandatory {
			continue
		}
		log.Debugf("catalog: creating missing mandatory table %s", t.Name)
		if err := createTable(db, t); err != nil {
			report.errs.Append("%v", err)
		}
	}
	return report
}
