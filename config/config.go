// Package config loads the TOML configuration gpkgctl runs from,
// following atlasdatatech-tegola's config package: a file is read,
// $ENV_VAR references are substituted before the TOML parse, and the
// result is decoded into a typed struct.
package config

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// DatabaseConfig describes the GeoPackage/SQLite file gpkgctl operates
// against.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for
	// scratch runs.
	Path string `toml:"path"`
	// Dialect selects the container framing sqlfn.Register binds:
	// "gpkg" (default) or "spatialite".
	Dialect string `toml:"dialect"`
	// DefaultSRID is used by commands that create geometry columns
	// without an explicit --srid flag.
	DefaultSRID int32 `toml:"default_srid"`
}

// LoggingConfig controls internal/log's verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config is gpkgctl's root configuration document.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Path:        "gpkg.sqlite",
			Dialect:     "gpkg",
			DefaultSRID: 4326,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// envVarPattern matches a $NAME reference; names that don't start with a
// letter or underscore (e.g. "$32.78") are left untouched, the same rule
// the teacher's config templating used.
var envVarPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// replaceEnvVars substitutes every $NAME reference in r's contents with
// os.Getenv(NAME) (empty string if unset) and returns the result as a new
// reader, so Load can feed it straight to the TOML decoder.
func replaceEnvVars(r io.Reader) (io.Reader, error) {
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	replaced := envVarPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		return []byte(os.Getenv(string(match[1:])))
	})
	return bytes.NewReader(replaced), nil
}

// Load reads and decodes the TOML file at location, applying environment
// variable substitution first. An empty location returns Defaults().
func Load(location string) (Config, error) {
	cfg := Defaults()
	if location == "" {
		return cfg, nil
	}

	f, err := os.Open(location)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	rdr, err := replaceEnvVars(f)
	if err != nil {
		return cfg, err
	}

	if _, err := toml.DecodeReader(rdr, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
