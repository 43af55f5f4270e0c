// Package config holds the node settings read from a TOML file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

type Config struct {
	Datastore Datastore `toml:"datastore"`
	Cache     Cache     `toml:"cache"`
	API       API       `toml:"api"`
	Log       Log       `toml:"log"`
}

type Datastore struct {
	// Path of the leveldb directory. Empty keeps everything in memory.
	Path string `toml:"path"`
}

type Cache struct {
	VerifyingKeys int `toml:"verifying_keys"`
}

type API struct {
	Listen string `toml:"listen"`
	// AdminToken guards parameter registration when set.
	AdminToken string `toml:"admin_token"`
}

type Log struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Datastore: Datastore{Path: "~/.porep-verifier/datastore"},
		Cache:     Cache{VerifyingKeys: 16},
		API:       API{Listen: "0.0.0.0:8010"},
		Log:       Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(expandHome(path), cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, xerrors.Errorf("unknown config keys: %v", undecoded)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Cache.VerifyingKeys <= 0 {
		return xerrors.Errorf("cache.verifying_keys must be positive, got %d", c.Cache.VerifyingKeys)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return xerrors.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// DatastorePath is the datastore directory with ~ expanded.
func (c *Config) DatastorePath() string {
	return expandHome(c.Datastore.Path)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
