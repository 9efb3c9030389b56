// Package catalog implements the GeoPackage schema/catalogue layer (C9):
// declarative table descriptions, schema init, audit, integrity checks,
// DDL for adding geometry columns, and spatial-index installation.
package catalog

// Column describes one catalogue-table column: its SQL type, nullability,
// primary-key membership, default expression, and an optional foreign-key
// or CHECK clause appended verbatim to the CREATE TABLE statement.
//
// Field shape follows original_source/gpkg/tables.c's column_info_t: name,
// type, default value/expression, NOT NULL/PRIMARY KEY/UNIQUE flags, and a
// trailing constraint clause.
type Column struct {
	Name       string
	Type       string
	Default    string // verbatim SQL literal/expression, "" for none
	NotNull    bool
	PrimaryKey bool
	Unique     bool
	Constraint string // e.g. "CONSTRAINT fk_... REFERENCES ..."
}

// Row is a default row inserted into a table at creation time (the seed
// rows for gpkg_spatial_ref_sys' two mandatory SRIDs).
type Row []interface{}

// Table is a catalogue table description: its name, columns, default
// rows, and whether init must create it when absent (mandatory) or only
// audit it when present (optional, e.g. tiles/metadata extension tables).
type Table struct {
	Name      string
	Columns   []Column
	Default   []Row
	Mandatory bool
}

// ColumnNames returns the table's column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// gpkgSpatialRefSys is always mandatory: every other catalogue table's
// srs_id foreign key resolves against it, and it ships the two reserved
// SRIDs from the GLOSSARY (-1 undefined Cartesian, 0 undefined
// geographic), grounded on gpkg/tables.c's gpkg_spatial_ref_sys_data.
var gpkgSpatialRefSys = Table{
	Name: "gpkg_spatial_ref_sys",
	Columns: []Column{
		{Name: "srs_name", Type: "text", NotNull: true},
		{Name: "srs_id", Type: "integer", NotNull: true, PrimaryKey: true},
		{Name: "organization", Type: "text", NotNull: true},
		{Name: "organization_coordsys_id", Type: "integer", NotNull: true},
		{Name: "definition", Type: "text", NotNull: true},
		{Name: "description", Type: "text"},
	},
	Default: []Row{
		{"Undefined Cartesian", -1, "NONE", -1, "undefined", nil},
		{"Undefined Geographic", 0, "NONE", 0, "undefined", nil},
	},
	Mandatory: true,
}

var gpkgContents = Table{
	Name: "gpkg_contents",
	Columns: []Column{
		{Name: "table_name", Type: "text", NotNull: true, PrimaryKey: true},
		{Name: "data_type", Type: "text", NotNull: true},
		{Name: "identifier", Type: "text"},
		{Name: "description", Type: "text", Default: "''"},
		{Name: "last_change", Type: "text", NotNull: true, Default: "strftime('%Y-%m-%dT%H:%M:%fZ', 'now')"},
		{Name: "min_x", Type: "double"},
		{Name: "min_y", Type: "double"},
		{Name: "max_x", Type: "double"},
		{Name: "max_y", Type: "double"},
		{Name: "srs_id", Type: "integer", Constraint: "CONSTRAINT fk_srid__gpkg_spatial_ref_sys_srs_id REFERENCES gpkg_spatial_ref_sys(srs_id)"},
	},
	Mandatory: true,
}

var gpkgExtensions = Table{
	Name: "gpkg_extensions",
	Columns: []Column{
		{Name: "table_name", Type: "text", Unique: true},
		{Name: "column_name", Type: "text", Unique: true},
		{Name: "extension_name", Type: "text", NotNull: true, Unique: true},
	},
	Mandatory: true,
}

var gpkgGeometryColumns = Table{
	Name: "gpkg_geometry_columns",
	Columns: []Column{
		{Name: "table_name", Type: "text", NotNull: true, PrimaryKey: true, Constraint: "CONSTRAINT fk_table_name__gpkg_contents_table_name REFERENCES gpkg_contents(table_name)"},
		{Name: "column_name", Type: "text", NotNull: true, PrimaryKey: true},
		{Name: "geometry_type", Type: "text", NotNull: true},
		{Name: "srs_id", Type: "integer", NotNull: true, Constraint: "CONSTRAINT fk_srs_id__gpkg_spatial_ref_sys_srs_id REFERENCES gpkg_spatial_ref_sys(srs_id)"},
		{Name: "z", Type: "integer", NotNull: true},
		{Name: "m", Type: "integer", NotNull: true},
	},
	Mandatory: true,
}

var gpkgTileMatrixSet = Table{
	Name: "gpkg_tile_matrix_set",
	Columns: []Column{
		{Name: "table_name", Type: "text", NotNull: true, PrimaryKey: true, Constraint: "CONSTRAINT fk_table_name__gpkg_contents_table_name REFERENCES gpkg_contents(table_name)"},
		{Name: "srs_id", Type: "integer", NotNull: true, Constraint: "CONSTRAINT fk_srs_id__gpkg_spatial_ref_sys_srs_id REFERENCES gpkg_spatial_ref_sys(srs_id)"},
		{Name: "min_x", Type: "double", NotNull: true},
		{Name: "min_y", Type: "double", NotNull: true},
		{Name: "max_x", Type: "double", NotNull: true},
		{Name: "max_y", Type: "double", NotNull: true},
	},
}

var gpkgTileMatrix = Table{
	Name: "gpkg_tile_matrix",
	Columns: []Column{
		{Name: "table_name", Type: "text", NotNull: true, PrimaryKey: true, Constraint: "CONSTRAINT fk_table_name__gpkg_contents_table_name REFERENCES gpkg_contents(table_name)"},
		{Name: "zoom_level", Type: "integer", NotNull: true, PrimaryKey: true},
		{Name: "matrix_width", Type: "integer", NotNull: true},
		{Name: "matrix_height", Type: "integer", NotNull: true},
		{Name: "tile_width", Type: "integer", NotNull: true},
		{Name: "tile_height", Type: "integer", NotNull: true},
		{Name: "pixel_x_size", Type: "double", NotNull: true},
		{Name: "pixel_y_size", Type: "double", NotNull: true},
	},
}

// GeoPackageTables is the fixed table set this backend owns, in the
// dependency order init must create them (gpkg/tables.c's `tables[]`).
var GeoPackageTables = []Table{
	gpkgSpatialRefSys,
	gpkgContents,
	gpkgExtensions,
	gpkgGeometryColumns,
	gpkgTileMatrixSet,
	gpkgTileMatrix,
}

// TilesTableColumns is the fixed column set for a per-tile-pyramid user
// table created by CreateTilesTable, grounded on gpkg/tables.c's
// tiles_table_columns.
var TilesTableColumns = []Column{
	{Name: "id", Type: "integer", PrimaryKey: true},
	{Name: "zoom_level", Type: "integer", NotNull: true, Unique: true},
	{Name: "tile_column", Type: "integer", NotNull: true, Unique: true},
	{Name: "tile_row", Type: "integer", NotNull: true, Unique: true},
	{Name: "tile_data", Type: "blob", NotNull: true},
}
