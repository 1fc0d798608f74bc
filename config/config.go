// Package config loads the optional dfa-gen defaults file. It reads the raw
// bytes, then toml.Unmarshal into a typed struct, surfacing a wrapped error
// on malformed TOML rather than trying to recover partial data.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvVar is the environment variable consulted for a config file path when
// --config is not given.
const EnvVar = "DFAGEN_CONFIG"

// Config holds the defaults an optional file may supply. Every field has a
// meaningful zero value, since the file itself is optional.
type Config struct {
	Verbosity   string `toml:"verbosity"`
	DebugDir    string `toml:"debug_dir"`
	Interactive bool   `toml:"interactive"`
}

// Default returns the built-in defaults used when no config file is found.
func Default() Config {
	return Config{Verbosity: "WARN"}
}

// Load reads and parses the TOML file at path. A malformed file is a fatal
// error; path itself being empty is not handled here (see LoadOptional).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional resolves the config file to use, preferring an explicit
// flagPath over the EnvVar environment variable, and returns Default() with
// no error if neither is set or the resolved file does not exist. A file
// that does exist but fails to parse is still a fatal error.
func LoadOptional(flagPath string) (Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); err != nil {
		if flagPath != "" {
			// An explicitly-named file that can't be statted is an error;
			// a file named only via the environment variable is treated
			// the same as if the variable had not been set.
			return Config{}, fmt.Errorf("config %q: %w", path, err)
		}
		return Default(), nil
	}

	return Load(path)
}
