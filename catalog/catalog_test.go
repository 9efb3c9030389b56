package catalog

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openMemDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNormalizeGeometryType(t *testing.T) {
	cases := map[string]string{
		"point":              "POINT",
		"POINT":              "POINT",
		"st_point":           "POINT",
		"ST_MultiPolygon":    "MULTIPOLYGON",
		"geomcollection":     "GEOMETRYCOLLECTION",
		"geometrycollection": "GEOMETRYCOLLECTION",
	}
	for in, want := range cases {
		got, err := normalizeGeometryType(in)
		if err != nil {
			t.Errorf("normalizeGeometryType(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("normalizeGeometryType(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := normalizeGeometryType("not_a_type"); err == nil {
		t.Error("expected error for unknown geometry type")
	}
}

func TestInitCreatesMandatoryTables(t *testing.T) {
	db := openMemDB(t)
	report := Init(db)
	if !report.OK() {
		t.Fatalf("Init reported discrepancies: %s", report.Errors().String())
	}
	for _, tbl := range GeoPackageTables {
		if !tbl.Mandatory {
			continue
		}
		exists, err := tableExists(db, tbl.Name)
		if err != nil {
			t.Fatalf("tableExists(%s): %v", tbl.Name, err)
		}
		if !exists {
			t.Errorf("table %s was not created", tbl.Name)
		}
	}

	var n int
	if err := db.QueryRow("SELECT count(*) FROM gpkg_spatial_ref_sys").Scan(&n); err != nil {
		t.Fatalf("counting gpkg_spatial_ref_sys: %v", err)
	}
	if n != 2 {
		t.Errorf("gpkg_spatial_ref_sys has %d rows, want 2 default rows", n)
	}
}

func TestInitIdempotent(t *testing.T) {
	db := openMemDB(t)
	if report := Init(db); !report.OK() {
		t.Fatalf("first Init: %s", report.Errors().String())
	}
	report := Init(db)
	if !report.OK() {
		t.Fatalf("second Init reported discrepancies on an unmodified schema: %s", report.Errors().String())
	}
}

func TestAuditDetectsMissingColumn(t *testing.T) {
	db := openMemDB(t)
	if _, err := db.Exec("CREATE TABLE gpkg_spatial_ref_sys (srs_id integer primary key)"); err != nil {
		t.Fatalf("creating stunted table: %v", err)
	}
	report := NewAuditReport()
	auditTable(db, GeoPackageTables[0], report)
	if report.OK() {
		t.Fatal("expected discrepancies for a table missing most of its columns")
	}
	if !strings.Contains(report.Errors().String(), "missing column") {
		t.Errorf("expected a missing-column discrepancy, got: %s", report.Errors().String())
	}
}

func TestAddGeometryColumn(t *testing.T) {
	db := openMemDB(t)
	if report := Init(db); !report.OK() {
		t.Fatalf("Init: %s", report.Errors().String())
	}
	if _, err := db.Exec("CREATE TABLE points (fid integer primary key)"); err != nil {
		t.Fatalf("creating host table: %v", err)
	}
	if err := AddGeometryColumn(db, "points", "geom", "point", 0, 0, 0); err != nil {
		t.Fatalf("AddGeometryColumn: %v", err)
	}

	var geomType string
	err := db.QueryRow("SELECT geometry_type FROM gpkg_geometry_columns WHERE table_name = 'points'").Scan(&geomType)
	if err != nil {
		t.Fatalf("querying gpkg_geometry_columns: %v", err)
	}
	if geomType != "POINT" {
		t.Errorf("geometry_type = %q, want POINT", geomType)
	}
}

func TestAddGeometryColumnRejectsUnknownType(t *testing.T) {
	db := openMemDB(t)
	if report := Init(db); !report.OK() {
		t.Fatalf("Init: %s", report.Errors().String())
	}
	if _, err := db.Exec("CREATE TABLE points (fid integer primary key)"); err != nil {
		t.Fatalf("creating host table: %v", err)
	}
	if err := AddGeometryColumn(db, "points", "geom", "not_a_type", 0, 0, 0); err == nil {
		t.Fatal("expected error for unrecognized geometry type")
	}
}

func TestCheckOnFreshDatabase(t *testing.T) {
	db := openMemDB(t)
	if report := Init(db); !report.OK() {
		t.Fatalf("Init: %s", report.Errors().String())
	}
	report := Check(db, CheckAll)
	if !report.OK() {
		t.Fatalf("Check on a freshly initialized database reported discrepancies: %s", report.Errors().String())
	}
}
