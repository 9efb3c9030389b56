package main

import (
	"fmt"

	"github.com/atlasdatatech/gpkggeom/catalog"
	"github.com/go-spatial/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "create the mandatory GeoPackage metadata tables",
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

		report := catalog.Init(db)
		if !report.OK() {
			return fmt.Errorf("init completed with discrepancies:\n%s", report.Errors())
		}
		fmt.Println("initialized")
		return nil
	},
}
