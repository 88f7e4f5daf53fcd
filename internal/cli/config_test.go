package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Discovery.MaxDepth != 0 || cfg.Output.Format != "" {
		t.Errorf("missing config should be zero-valued, got %+v", cfg)
	}
	if cfg.cacheDisabled() {
		t.Error("missing config should not disable caching")
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	content := `
[discovery]
max_depth = 3
manifest = "deps.json"
marker = ".stack"

[cache]
enabled = false
ttl_hours = 12

[output]
format = "table"
`
	if err := os.WriteFile(filepath.Join(root, configFilename), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Discovery.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.Discovery.MaxDepth)
	}
	if cfg.Discovery.Manifest != "deps.json" {
		t.Errorf("Manifest = %q, want deps.json", cfg.Discovery.Manifest)
	}
	if cfg.Discovery.Marker != ".stack" {
		t.Errorf("Marker = %q, want .stack", cfg.Discovery.Marker)
	}
	if !cfg.cacheDisabled() {
		t.Error("enabled = false should disable caching")
	}
	if cfg.Cache.TTLHours != 12 {
		t.Errorf("TTLHours = %d, want 12", cfg.Cache.TTLHours)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Format = %q, want table", cfg.Output.Format)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, configFilename), []byte("[discovery\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(root); err == nil {
		t.Fatal("malformed config should be an error")
	}
}
