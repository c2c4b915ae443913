// Package config resolves the client configuration from built-in defaults,
// layered connect.toml files, and command-line overrides, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Config is the resolved client configuration.
type Config struct {
	URLRoot        string `toml:"url_root"`
	Project        string `toml:"project"`
	SessionFile    string `toml:"session_file"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	// ConfigFile chains one extra configuration file into the load order,
	// read before the file that named it is overridden by later layers.
	ConfigFile string `toml:"config_file"`
}

// Defaults mirrors the original client's built-in configuration.
func Defaults() Config {
	return Config{
		URLRoot:        "https://c3g-portal.sd4h.ca",
		Project:        "moh-q",
		SessionFile:    "~/.pt_cli",
		TimeoutSeconds: 30,
	}
}

// DefaultFiles are the configuration files consulted in order; later files
// override earlier ones.
func DefaultFiles() []string {
	return []string{"~/.config/pt-cli/connect.toml", "./connect.toml"}
}

// Load reads the layered configuration. Files that do not exist are skipped.
// A config_file key inserts the named file ahead of the remaining layers,
// the same chaining the original YAML loader performed.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = DefaultFiles()
	}

	cfg := Defaults()
	seen := make(map[string]bool)
	for i := 0; i < len(files); i++ {
		path := expandUser(files[i])
		if seen[path] {
			continue
		}
		seen[path] = true

		if _, err := os.Stat(path); err != nil {
			continue
		}

		var layer Config
		if _, err := toml.DecodeFile(path, &layer); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		merge(&cfg, layer)

		if layer.ConfigFile != "" {
			files = append(files[:i+1], append([]string{layer.ConfigFile}, files[i+1:]...)...)
		}
	}
	return cfg, nil
}

// merge overlays the keys a layer actually set, matching dict.update
// semantics: zero values in the layer leave the existing value alone.
func merge(dst *Config, layer Config) {
	if layer.URLRoot != "" {
		dst.URLRoot = layer.URLRoot
	}
	if layer.Project != "" {
		dst.Project = layer.Project
	}
	if layer.SessionFile != "" {
		dst.SessionFile = layer.SessionFile
	}
	if layer.User != "" {
		dst.User = layer.User
	}
	if layer.Password != "" {
		dst.Password = layer.Password
	}
	if layer.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = layer.TimeoutSeconds
	}
	dst.ConfigFile = layer.ConfigFile
}

// Items returns the configuration as ordered key/value pairs for the info
// listing. The password is masked; its presence still shows.
func (c Config) Items() [][2]string {
	items := [][2]string{
		{"url_root", c.URLRoot},
		{"project", c.Project},
		{"session_file", c.SessionFile},
		{"user", c.User},
		{"password", maskSecret(c.Password)},
		{"timeout_seconds", fmt.Sprintf("%d", c.TimeoutSeconds)},
	}
	sort.Slice(items, func(i, j int) bool { return items[i][0] < items[j][0] })
	return items
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func expandUser(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
