package main

import (
	"fmt"

	"github.com/atlasdatatech/gpkggeom/catalog"
	"github.com/go-spatial/cobra"
)

var skipForeignKeys bool
var skipIntegrity bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "audit an existing database against the GeoPackage schema",
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

		var flags catalog.CheckFlags
		if skipForeignKeys {
			flags |= catalog.SkipForeignKeyCheck
		}
		if skipIntegrity {
			flags |= catalog.SkipIntegrityCheck
		}

		report := catalog.Check(db, flags)
		if !report.OK() {
			fmt.Println(report.Errors())
			return fmt.Errorf("check found %d discrepancies", report.Errors().Count())
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&skipForeignKeys, "skip-foreign-keys", false, "skip PRAGMA foreign_key_check")
	checkCmd.Flags().BoolVar(&skipIntegrity, "skip-integrity", false, "skip PRAGMA integrity_check")
}
