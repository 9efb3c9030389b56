package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Database.Dialect != "gpkg" {
		t.Errorf("default dialect = %q, want gpkg", cfg.Database.Dialect)
	}
	if cfg.Database.DefaultSRID != 4326 {
		t.Errorf("default SRID = %d, want 4326", cfg.Database.DefaultSRID)
	}
}

func TestLoadEmptyLocationReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("Load(\"\") = %+v, want Defaults()", cfg)
	}
}

func TestLoadOverridesAndEnvSubstitution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gpkgctl.toml")
	contents := `
[database]
path = "$GPKGCTL_TEST_PATH"
dialect = "spatialite"
default_srid = 3857

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	os.Setenv("GPKGCTL_TEST_PATH", "/tmp/test.gpkg")
	defer os.Unsetenv("GPKGCTL_TEST_PATH")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/test.gpkg" {
		t.Errorf("Database.Path = %q, want /tmp/test.gpkg", cfg.Database.Path)
	}
	if cfg.Database.Dialect != "spatialite" {
		t.Errorf("Database.Dialect = %q, want spatialite", cfg.Database.Dialect)
	}
	if cfg.Database.DefaultSRID != 3857 {
		t.Errorf("Database.DefaultSRID = %d, want 3857", cfg.Database.DefaultSRID)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}
