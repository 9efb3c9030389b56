package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/atlasdatatech/gpkggeom/internal/log"
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
)

// indexEntry wraps one indexed row's rowid and bounding box for
// rtreego.Spatial, following beetlebugorg-s57's indexedFeature pattern.
type indexEntry struct {
	rowid  int64
	minX   float64
	minY   float64
	maxX   float64
	maxY   float64
}

// spatialIndexEpsilon is the minimum rectangle side rtreego requires;
// point geometries (zero-area envelopes) are widened to it, the same
// epsilon-padding idiom beetlebugorg-s57 uses for point features.
const spatialIndexEpsilon = 1e-9

func (e *indexEntry) Bounds() rtreego.Rect {
	width := e.maxX - e.minX
	height := e.maxY - e.minY
	if width < spatialIndexEpsilon {
		width = spatialIndexEpsilon
	}
	if height < spatialIndexEpsilon {
		height = spatialIndexEpsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{e.minX, e.minY}, []float64{width, height})
	return rect
}

// SpatialIndex is the in-memory mirror of a SQL rtree/idx virtual table:
// CreateSpatialIndex populates both the SQL-visible shadow table and this
// tree in one pass, inserting each bounding box into the SQL table first
// and then into the tree. The boxes are not validated, and nothing in this
// package compares the tree with the SQL table afterwards.
type SpatialIndex struct {
	Table  string
	Column string
	tree   *rtreego.Rtree
}

// IndexTableName returns the SQL table name CreateSpatialIndex creates for
// (table, column) under the given backend naming convention.
func IndexTableName(table, column string, spatialite bool) string {
	if spatialite {
		return fmt.Sprintf("idx_%s_%s", table, column)
	}
	return fmt.Sprintf("rtree_%s_%s", table, column)
}

// EnvelopeFunc abstracts the per-row geometry-envelope computation
// CreateSpatialIndex needs; callers supply an implementation backed by the
// blob/wkb codec, keeping this package free of a codec import cycle.
type EnvelopeFunc func(geomBlob []byte) (minX, minY, maxX, maxY float64, empty bool, err error)

// CreateSpatialIndex implements spec.md §4.8's create_spatial_index: it
// builds an index table named rtree_<table>_<column> (GeoPackage) or
// idx_<table>_<column> (Spatialite), populates it from rows with
// non-empty geometries, installs the insert/update/delete maintenance
// triggers, and records the extension's use in gpkg_extensions.
func CreateSpatialIndex(db *sql.DB, table, column, idColumn string, spatialite bool, env EnvelopeFunc) (*SpatialIndex, error) {
	indexTable := IndexTableName(table, column, spatialite)
	idx := &SpatialIndex{Table: table, Column: column, tree: rtreego.NewTree(2, 25, 50)}

	err := runInSavepoint(db, func() error {
		createSQL := fmt.Sprintf(
			"CREATE VIRTUAL TABLE %s USING rtree(id, minx, maxx, miny, maxy)", indexTable)
		if _, err := db.Exec(createSQL); err != nil {
			return errors.Wrapf(err, "catalog: creating spatial index table %s", indexTable)
		}

		rows, err := db.Query(fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IS NOT NULL", idColumn, column, table, column))
		if err != nil {
			return errors.Wrapf(err, "catalog: scanning %s for spatial index population", table)
		}
		defer rows.Close()

		var ids []int64
		var blobs [][]byte
		for rows.Next() {
			var id int64
			var blob []byte
			if err := rows.Scan(&id, &blob); err != nil {
				return errors.Wrap(err, "catalog: scanning spatial index row")
			}
			ids, blobs = append(ids, id), append(blobs, blob)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		// The open cursor holds a pool connection; close it so the inserts
		// reuse the savepoint's connection instead of opening another.
		rows.Close()

		insert := fmt.Sprintf("INSERT INTO %s (id, minx, maxx, miny, maxy) VALUES (?, ?, ?, ?, ?)", indexTable)
		var populated int
		for i, id := range ids {
			minX, minY, maxX, maxY, empty, err := env(blobs[i])
			if err != nil {
				return errors.Wrapf(err, "catalog: computing envelope for %s row %d", table, id)
			}
			if empty {
				continue
			}
			if _, err := db.Exec(insert, id, minX, maxX, minY, maxY); err != nil {
				return errors.Wrapf(err, "catalog: populating spatial index row %d", id)
			}
			idx.tree.Insert(&indexEntry{rowid: id, minX: minX, minY: minY, maxX: maxX, maxY: maxY})
			populated++
		}

		if err := installSpatialIndexTriggers(db, table, column, idColumn, indexTable); err != nil {
			return err
		}

		if !spatialite {
			extName := "gpkg_rtree_index"
			stmt := `INSERT INTO gpkg_extensions (table_name, column_name, extension_name) VALUES (?, ?, ?)`
			if _, err := db.Exec(stmt, table, column, extName); err != nil {
				return errors.Wrap(err, "catalog: recording rtree extension usage")
			}
		}

		log.Debugf("catalog: populated spatial index %s with %d rows", indexTable, populated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// installSpatialIndexTriggers installs the AFTER INSERT / 4x AFTER UPDATE
// (rowid-change x geometry-null-status) / AFTER DELETE triggers that keep
// indexTable in sync with table.column, per spec.md §4.8.
func installSpatialIndexTriggers(db *sql.DB, table, column, idColumn, indexTable string) error {
	base := strings.ToLower(fmt.Sprintf("trigger_%s_%s", table, column))

	stmts := []string{
		fmt.Sprintf(`CREATE TRIGGER %s_insert AFTER INSERT ON %s
			WHEN NEW.%s IS NOT NULL
			BEGIN
				INSERT OR REPLACE INTO %s (id, minx, maxx, miny, maxy)
				VALUES (NEW.%s, ST_MinX(NEW.%s), ST_MaxX(NEW.%s), ST_MinY(NEW.%s), ST_MaxY(NEW.%s));
			END`, base, table, column, indexTable, idColumn, column, column, column, column),

		// rowid unchanged, geometry still non-null: refresh the bounds.
		fmt.Sprintf(`CREATE TRIGGER %s_update1 AFTER UPDATE OF %s ON %s
			WHEN OLD.%s = NEW.%s AND NEW.%s IS NOT NULL
			BEGIN
				INSERT OR REPLACE INTO %s (id, minx, maxx, miny, maxy)
				VALUES (NEW.%s, ST_MinX(NEW.%s), ST_MaxX(NEW.%s), ST_MinY(NEW.%s), ST_MaxY(NEW.%s));
			END`, base, column, table, idColumn, idColumn, column, indexTable, idColumn, column, column, column, column),

		// rowid unchanged, geometry became null: drop the row.
		fmt.Sprintf(`CREATE TRIGGER %s_update2 AFTER UPDATE OF %s ON %s
			WHEN OLD.%s = NEW.%s AND NEW.%s IS NULL
			BEGIN
				DELETE FROM %s WHERE id = OLD.%s;
			END`, base, column, table, idColumn, idColumn, column, indexTable, idColumn),

		// rowid changed, new geometry non-null: move the entry.
		fmt.Sprintf(`CREATE TRIGGER %s_update3 AFTER UPDATE OF %s ON %s
			WHEN OLD.%s != NEW.%s AND NEW.%s IS NOT NULL
			BEGIN
				DELETE FROM %s WHERE id = OLD.%s;
				INSERT OR REPLACE INTO %s (id, minx, maxx, miny, maxy)
				VALUES (NEW.%s, ST_MinX(NEW.%s), ST_MaxX(NEW.%s), ST_MinY(NEW.%s), ST_MaxY(NEW.%s));
			END`, base, column, table, idColumn, idColumn, column, indexTable, idColumn, indexTable, idColumn, column, column, column, column),

		// rowid changed, new geometry null: just drop the old entry.
		fmt.Sprintf(`CREATE TRIGGER %s_update4 AFTER UPDATE OF %s ON %s
			WHEN OLD.%s != NEW.%s AND NEW.%s IS NULL
			BEGIN
				DELETE FROM %s WHERE id = OLD.%s;
			END`, base, column, table, idColumn, idColumn, column, indexTable, idColumn),

		fmt.Sprintf(`CREATE TRIGGER %s_delete AFTER DELETE ON %s
			BEGIN
				DELETE FROM %s WHERE id = OLD.%s;
			END`, base, table, indexTable, idColumn),
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "catalog: installing spatial index trigger on %s.%s", table, column)
		}
	}
	return nil
}

// SearchIntersect returns the rowids of entries in idx whose bounding box
// intersects [minX,minY]-[maxX,maxY]. Check does not call it.
func (idx *SpatialIndex) SearchIntersect(minX, minY, maxX, maxY float64) []int64 {
	width := maxX - minX
	height := maxY - minY
	if width < spatialIndexEpsilon {
		width = spatialIndexEpsilon
	}
	if height < spatialIndexEpsilon {
		height = spatialIndexEpsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{width, height})
	results := idx.tree.SearchIntersect(rect)
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.(*indexEntry).rowid
	}
	return ids
}
