package catalog

import (
	"database/sql"
	"strings"

	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/pkg/errors"
)

// AuditReport accumulates schema discrepancies without aborting on the
// first one found, per spec.md §4.8 ("reports every discrepancy ... into
// the error stream without aborting on the first finding").
type AuditReport struct {
	errs *stream.ErrorStream
}

// NewAuditReport returns an empty report.
func NewAuditReport() *AuditReport {
	return &AuditReport{errs: stream.NewErrorStream()}
}

// Errors exposes the underlying error stream for SQL-binding callers that
// need to surface its accumulated text (spec.md §7).
func (r *AuditReport) Errors() *stream.ErrorStream { return r.errs }

// OK reports whether no discrepancy was recorded.
func (r *AuditReport) OK() bool { return r.errs.Empty() }

// columnInfo mirrors one row of PRAGMA table_info(T).
type columnInfo struct {
	name       string
	ctype      string
	notNull    bool
	defaultVal sql.NullString
	pk         int
}

func readTableInfo(db *sql.DB, table string) (map[string]columnInfo, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, errors.Wrapf(err, "catalog: PRAGMA table_info(%s)", table)
	}
	defer rows.Close()

	cols := make(map[string]columnInfo)
	for rows.Next() {
		var cid int
		var ci columnInfo
		var notNullInt int
		if err := rows.Scan(&cid, &ci.name, &ci.ctype, &notNullInt, &ci.defaultVal, &ci.pk); err != nil {
			return nil, errors.Wrapf(err, "catalog: scanning table_info(%s)", table)
		}
		ci.notNull = notNullInt != 0
		cols[ci.name] = ci
	}
	return cols, rows.Err()
}

// auditTable walks PRAGMA table_info(t.Name) and reports every
// discrepancy from t's description into report: missing column, extra
// column, wrong type, wrong nullability, wrong default, wrong
// primary-key membership.
func auditTable(db *sql.DB, t Table, report *AuditReport) {
	actual, err := readTableInfo(db, t.Name)
	if err != nil {
		report.errs.Append("%v", err)
		return
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, want := range t.Columns {
		seen[want.Name] = true
		got, ok := actual[want.Name]
		if !ok {
			report.errs.Append("table %s: missing column %s", t.Name, want.Name)
			continue
		}
		if !strings.EqualFold(got.ctype, want.Type) {
			report.errs.Append("table %s: column %s has type %s, want %s", t.Name, want.Name, got.ctype, want.Type)
		}
		if got.notNull != want.NotNull {
			report.errs.Append("table %s: column %s notnull=%v, want %v", t.Name, want.Name, got.notNull, want.NotNull)
		}
		if (got.pk > 0) != want.PrimaryKey {
			report.errs.Append("table %s: column %s primary-key membership=%v, want %v", t.Name, want.Name, got.pk > 0, want.PrimaryKey)
		}
		if want.Default != "" && !defaultMatches(got.defaultVal, want.Default) {
			report.errs.Append("table %s: column %s has default %q, want %q", t.Name, want.Name, got.defaultVal.String, want.Default)
		}
	}
	for name := range actual {
		if !seen[name] {
			report.errs.Append("table %s: extra column %s", t.Name, name)
		}
	}
}

func defaultMatches(got sql.NullString, want string) bool {
	if !got.Valid {
		return false
	}
	trimmed := strings.Trim(got.String, "()")
	return strings.EqualFold(trimmed, want) || strings.EqualFold(got.String, want)
}
