// Command gpkgctl is the administration and manual-testing surface for
// the SQL-bindings and catalogue layers: it gives them a host to run
// under outside of a live SQL engine, recovered in spirit from
// original_source/test/runscript.c and tests/check_gpkg.c, which drive
// the same operations from a standalone harness rather than a SQL shell.
package main

import (
	"fmt"
	"os"

	"github.com/go-spatial/cobra"

	// Blank-imported for its actual role in the teacher's dependency
	// graph: it pins the module's minimum Go version via an embedded
	// build-tag constraint, failing the build on an older toolchain
	// rather than failing at runtime.
	_ "github.com/theckman/goconstraint/go1.9/gte"

	"github.com/atlasdatatech/gpkggeom/config"
	"github.com/atlasdatatech/gpkggeom/internal/log"
)

var cfgFile string
var dbPath string
var dialectFlag string

var rootCmd = &cobra.Command{
	Use:   "gpkgctl",
	Short: "gpkgctl administers and queries GeoPackage/Spatialite geometry columns",
	Long: `gpkgctl drives the catalogue and SQL-function bindings of the
GeoPackage spatial extension from the command line: initializing the
mandatory metadata tables, auditing an existing database, registering
geometry columns and spatial indexes, and converting a geometry blob
between the GeoPackage-binary and Spatialite-blob container dialects.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "", "container dialect: gpkg or spatialite (overrides config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(addGeometryColumnCmd)
	rootCmd.AddCommand(createSpatialIndexCmd)
	rootCmd.AddCommand(convertCmd)
}

// loadConfig merges the TOML config (if any) with the --db/--dialect
// overrides, the same precedence order config.Load's callers use
// elsewhere in the teacher's CLI.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dialectFlag != "" {
		cfg.Database.Dialect = dialectFlag
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
