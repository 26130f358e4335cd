package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/logger"
)

// Load reads configuration. An explicit path must exist; otherwise the
// nearest derivegen.toml above the working directory is used when present.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()

	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = FindProjectConfig(wd)
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		logger.Debugw("Loaded config", logger.FieldFile, path)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, errors.Wrapf(err, "invalid config %s", path)
		}
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// newViper initializes Viper with environment binding and defaults.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// FindProjectConfig searches for derivegen.toml by walking up the directory
// tree from dir. Returns the empty string when none is found.
func FindProjectConfig(dir string) string {
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
