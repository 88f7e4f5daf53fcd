package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/example/stackplan/pkg/errors"
)

// configFilename is the optional per-tree configuration file, looked up in
// the scan root.
const configFilename = "stackplan.toml"

// Config mirrors stackplan.toml. All fields are optional; flags take
// precedence over config values, which take precedence over built-in
// defaults.
//
//	[discovery]
//	max_depth = 3
//	manifest = "dependencies.json"
//	marker = ".stack"
//
//	[cache]
//	enabled = true
//	ttl_hours = 24
//
//	[output]
//	format = "json"
type Config struct {
	Discovery DiscoveryConfig `toml:"discovery"`
	Cache     CacheConfig     `toml:"cache"`
	Output    OutputConfig    `toml:"output"`
}

type DiscoveryConfig struct {
	MaxDepth int    `toml:"max_depth"`
	Manifest string `toml:"manifest"`
	Marker   string `toml:"marker"`
}

type CacheConfig struct {
	// Enabled is a pointer so "absent" and "false" are distinguishable.
	Enabled  *bool `toml:"enabled"`
	TTLHours int   `toml:"ttl_hours"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// loadConfig reads root/stackplan.toml. A missing file yields the zero
// Config; a malformed file is an error.
func loadConfig(root string) (Config, error) {
	var cfg Config
	path := filepath.Join(root, configFilename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// cacheDisabled reports whether the config explicitly turns caching off.
func (c Config) cacheDisabled() bool {
	return c.Cache.Enabled != nil && !*c.Cache.Enabled
}
