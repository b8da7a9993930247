// Where: internal/config/global.go
// What: Global config load/save helpers.
// Why: Manage ~/.toxa/config.yaml consistently.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "TOXA_CONFIG_PATH"
	envConfigHome = "TOXA_CONFIG_HOME"
	homeDirName   = ".toxa"
)

// GlobalConfig represents the ~/.toxa/config.yaml user configuration.
// It stores remembered defaults and recently used project directories.
type GlobalConfig struct {
	Version         int      `yaml:"version"`
	DefaultParallel int      `yaml:"default_parallel,omitempty"`
	Quiet           bool     `yaml:"quiet,omitempty"`
	RecentProjects  []string `yaml:"recent_projects,omitempty"`
}

const recentProjectsKept = 10

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{Version: 1}
}

// GlobalConfigPath returns the path to the global config file. The
// TOXA_CONFIG_PATH and TOXA_CONFIG_HOME environment variables override
// the default under the user's home directory.
func GlobalConfigPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(envConfigPath)); override != "" {
		path := override
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		return path, nil
	}
	if override := strings.TrimSpace(os.Getenv(envConfigHome)); override != "" {
		return filepath.Join(override, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeDirName, "config.yaml"), nil
}

// EnsureGlobalConfig creates the global config file if it doesn't exist.
func EnsureGlobalConfig() error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return SaveGlobalConfig(path, DefaultGlobalConfig())
		}
		return err
	}
	return nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, err
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}

// SaveGlobalConfig writes a GlobalConfig to the specified path.
func SaveGlobalConfig(path string, cfg GlobalConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, payload, 0o644)
}

// RememberProject records dir at the front of the recent projects list.
func (c *GlobalConfig) RememberProject(dir string) {
	recent := []string{dir}
	for _, entry := range c.RecentProjects {
		if entry != dir {
			recent = append(recent, entry)
		}
	}
	if len(recent) > recentProjectsKept {
		recent = recent[:recentProjectsKept]
	}
	c.RecentProjects = recent
}
