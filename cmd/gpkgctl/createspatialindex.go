package main

import (
	"fmt"

	"github.com/atlasdatatech/gpkggeom/catalog"
	"github.com/go-spatial/cobra"
)

var createSpatialIndexCmd = &cobra.Command{
	Use:   "create-spatial-index <table> <geometry-column> <id-column>",
	Short: "build an R-tree spatial index over a geometry column",
	Args:  cobra.ExactArgs(3),
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

		table, column, idColumn := args[0], args[1], args[2]
		dialect := dialectOf(cfg.Database.Dialect)
		spatialite := cfg.Database.Dialect == "spatialite"

		if _, err := catalog.CreateSpatialIndex(db, table, column, idColumn, spatialite, blobEnvelope(dialect)); err != nil {
			return err
		}
		fmt.Printf("created spatial index %s\n", catalog.IndexTableName(table, column, spatialite))
		return nil
	},
}
