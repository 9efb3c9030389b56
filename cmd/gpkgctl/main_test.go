package main

import (
	"testing"

	"github.com/atlasdatatech/gpkggeom/blob"
)

func TestDialectOf(t *testing.T) {
	cases := []struct {
		name string
		want blob.ContainerDialect
	}{
		{"gpkg", blob.GeoPackage},
		{"spatialite", blob.SpatialiteBlob},
		{"", blob.GeoPackage},
		{"bogus", blob.GeoPackage},
	}
	for _, c := range cases {
		if got := dialectOf(c.name); got != c.want {
			t.Errorf("dialectOf(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	oldDB, oldDialect := dbPath, dialectFlag
	defer func() { dbPath, dialectFlag = oldDB, oldDialect }()

	dbPath = "/tmp/override.gpkg"
	dialectFlag = "spatialite"
	cfgFile = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Database.Path != "/tmp/override.gpkg" {
		t.Errorf("Database.Path = %q, want /tmp/override.gpkg", cfg.Database.Path)
	}
	if cfg.Database.Dialect != "spatialite" {
		t.Errorf("Database.Dialect = %q, want spatialite", cfg.Database.Dialect)
	}
}
