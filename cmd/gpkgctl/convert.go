package main

import (
	"fmt"

	"github.com/atlasdatatech/gpkggeom/blob"
	"github.com/atlasdatatech/gpkggeom/geomtype"
	"github.com/atlasdatatech/gpkggeom/stream"
	"github.com/atlasdatatech/gpkggeom/wkb"
	"github.com/go-spatial/cobra"
)

var convertTargetDialect string
var convertSRID int

// convertCmd rewrites every geometry in table.column from whatever
// container dialect it is currently stored under into --to's dialect,
// the same reader-drives-writer pipeline sqlfn.reencode uses for
// ST_SRID's dialect-preserving update, run here across a whole column.
var convertCmd = &cobra.Command{
	Use:   "convert <table> <column>",
	Short: "rewrite a geometry column between the GeoPackage-binary and Spatialite-blob container dialects",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		table, column := args[0], args[1]
		target := dialectOf(convertTargetDialect)
		srid := int32(convertSRID)

		rows, err := db.Query(fmt.Sprintf(`SELECT rowid, %s FROM %s WHERE %s IS NOT NULL`, column, table, column))
		if err != nil {
			return err
		}
		defer rows.Close()

		type update struct {
			rowid int64
			blob  []byte
		}
		var updates []update
		for rows.Next() {
			var rowid int64
			var raw []byte
			if err := rows.Scan(&rowid, &raw); err != nil {
				return err
			}
			out, err := reencode(raw, target, srid)
			if err != nil {
				return fmt.Errorf("row %d: %w", rowid, err)
			}
			updates = append(updates, update{rowid, out})
		}
		if err := rows.Err(); err != nil {
			return err
		}

		stmt, err := db.Prepare(fmt.Sprintf(`UPDATE %s SET %s = ? WHERE rowid = ?`, table, column))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, u := range updates {
			if _, err := stmt.Exec(u.blob, u.rowid); err != nil {
				return fmt.Errorf("row %d: %w", u.rowid, err)
			}
		}

		fmt.Printf("converted %d rows in %s.%s to %s\n", len(updates), table, column, convertTargetDialect)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertTargetDialect, "to", "gpkg", "target container dialect: gpkg or spatialite")
	convertCmd.Flags().IntVar(&convertSRID, "srid", 0, "SRID to stamp into the converted header (0 keeps the source SRID)")
}

// reencode decodes raw under its own detected dialect and re-emits it
// under dialect, stamping srid into the header when non-zero (otherwise
// preserving the source SRID).
func reencode(raw []byte, dialect blob.ContainerDialect, srid int32) ([]byte, error) {
	srcDialect, err := detectDialect(raw)
	if err != nil {
		return nil, err
	}

	hdr := &blob.Header{}
	if srid == 0 {
		if err := blob.NewReader(stream.NewFixed(raw), srcDialect, nil).ReadGeometry(geomtype.BaseConsumer{}, hdr); err != nil {
			return nil, err
		}
		srid = hdr.SRID
	}

	wkbDialect := wkb.ISO
	if dialect == blob.SpatialiteBlob {
		wkbDialect = wkb.Spatialite
	}

	out := stream.NewGrowable(len(raw) + 16)
	w := blob.NewWriter(out, dialect, wkbDialect, srid)
	r := blob.NewReader(stream.NewFixed(raw), srcDialect, nil)
	if err := r.ReadGeometry(w, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// detectDialect inspects a container blob's leading bytes, mirroring
// sqlfn's unexported detector: GeoPackage-binary starts "GP", Spatialite-
// blob starts 0x00.
func detectDialect(raw []byte) (blob.ContainerDialect, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("blob too short to be a geometry")
	}
	if raw[0] == 'G' && raw[1] == 'P' {
		return blob.GeoPackage, nil
	}
	if raw[0] == 0x00 {
		return blob.SpatialiteBlob, nil
	}
	return 0, fmt.Errorf("unrecognized geometry blob header")
}
