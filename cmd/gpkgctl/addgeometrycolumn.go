package main

import (
	"fmt"

	"github.com/atlasdatatech/gpkggeom/catalog"
	"github.com/go-spatial/cobra"
)

var agcSRID int
var agcZ int
var agcM int

var addGeometryColumnCmd = &cobra.Command{
	Use:   "add-geometry-column <table> <column> <geometry-type>",
	Short: "register a geometry column in gpkg_geometry_columns and install its constraint triggers",
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

		srid := agcSRID
		if !cmd.Flags().Changed("srid") {
			srid = int(cfg.Database.DefaultSRID)
		}

		table, column, geomType := args[0], args[1], args[2]
		if err := catalog.AddGeometryColumn(db, table, column, geomType, srid, agcZ, agcM); err != nil {
			return err
		}
		fmt.Printf("added geometry column %s.%s (%s, srid %d)\n", table, column, geomType, srid)
		return nil
	},
}

func init() {
	addGeometryColumnCmd.Flags().IntVar(&agcSRID, "srid", 0, "spatial reference system id (default: config's default_srid)")
	addGeometryColumnCmd.Flags().IntVar(&agcZ, "z", 0, "Z presence: 0 prohibited, 1 mandatory, 2 optional")
	addGeometryColumnCmd.Flags().IntVar(&agcM, "m", 0, "M presence: 0 prohibited, 1 mandatory, 2 optional")
}
