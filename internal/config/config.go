// Package config holds the run configuration for the derivekit CLI.
// Values come from an optional derivekit.toml next to the target
// package, with command-line flags overriding file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// FileName is the config file looked up in the target directory.
	FileName = "derivekit.toml"

	defaultDiffFileName  = "derivekit.diff"
	defaultCacheFileName = ".derivekit-cache"
	defaultConcurrency   = 4
)

// Config is the effective configuration of one run.
type Config struct {
	// Path is the root directory scanned for units.
	Path string `toml:"path"`

	// Write rewrites changed files in place instead of emitting a diff.
	Write bool `toml:"write"`

	// DiffFile receives the unified diff when Write is false.
	DiffFile string `toml:"diff"`

	// Format runs goimports formatting over rewritten files. Off by
	// default: it reformats the whole file, not just generated code.
	Format bool `toml:"format"`

	// CacheFile enables the incremental cache when non-empty.
	CacheFile string `toml:"cache"`

	// SweepLimit bounds re-resolution rounds per unit; zero selects
	// the engine default.
	SweepLimit int `toml:"sweep_limit"`

	// Concurrency bounds how many units are rewritten in parallel.
	Concurrency int `toml:"concurrency"`

	// Ignore lists glob patterns of file names to skip.
	Ignore []string `toml:"ignore"`

	Debug bool `toml:"debug"`
}

// Default returns the configuration a bare `derivekit generate --path X`
// run uses.
func Default() *Config {
	return &Config{
		Concurrency: defaultConcurrency,
	}
}

// LoadFile merges the TOML file at path into cfg. A missing file is not
// an error; the caller probes for FileName unconditionally.
func LoadFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: failed to parse config: %w", path, err)
	}
	return nil
}

// Validate fills derived defaults and checks the configuration, mirroring
// what the CLI would otherwise reject one flag at a time.
func (cfg *Config) Validate() error {
	if cfg.Path == "" {
		return errors.New("path is required")
	}
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return fmt.Errorf("path %q is invalid: %w", cfg.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %q is not a directory", cfg.Path)
	}

	if cfg.DiffFile == "" {
		cfg.DiffFile = filepath.Join(cfg.Path, defaultDiffFileName)
	}
	if filepath.Ext(cfg.DiffFile) != ".diff" {
		return errors.New("diff file must have a .diff extension")
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	for _, pattern := range cfg.Ignore {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("ignore pattern %q is invalid: %w", pattern, err)
		}
	}

	return nil
}

// DefaultCacheFile returns the cache location inside the target path.
func (cfg *Config) DefaultCacheFile() string {
	return filepath.Join(cfg.Path, defaultCacheFileName)
}
