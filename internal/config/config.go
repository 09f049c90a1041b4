// Package config loads the sitehooks.yaml file that describes which manifests
// the build hooks rewrite, which assets they publish into the built site and
// how the search smoke test is driven.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "sitehooks.yaml"

// Config represents the application configuration.
type Config struct {
	Release   ReleaseConfig `yaml:"release"`
	Site      SiteConfig    `yaml:"site"`
	PreBuild  StageConfig   `yaml:"pre_build"`
	PostBuild StageConfig   `yaml:"post_build"`
	Smoke     SmokeConfig   `yaml:"smoke"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

// ReleaseConfig controls how the release reference is discovered.
type ReleaseConfig struct {
	Source    string `yaml:"source"`              // "env" (default) or "git"
	EnvVar    string `yaml:"env_var,omitempty"`   // defaults to GITHUB_REF
	TagPrefix string `yaml:"tag_prefix"`          // defaults to refs/tags/
	RepoPath  string `yaml:"repo_path,omitempty"` // git source only
}

// SiteConfig mirrors the documentation generator's site settings the hooks need.
type SiteConfig struct {
	Directory string `yaml:"directory"`
}

// StageConfig lists the work done at one build lifecycle point.
type StageConfig struct {
	Manifests []ManifestRule `yaml:"manifests,omitempty"`
	Assets    []Asset        `yaml:"assets,omitempty"`
}

// ManifestRule describes one placeholder substitution.
type ManifestRule struct {
	Name        string   `yaml:"name"`
	Path        string   `yaml:"path"`
	Placeholder string   `yaml:"placeholder"`
	Replacement string   `yaml:"replacement,omitempty"` // ${version} / ${semver}
	Mode        string   `yaml:"mode,omitempty"`        // "text" (default) or "yaml"
	Keys        []string `yaml:"keys,omitempty"`        // yaml mode: dotted key paths
}

// Asset is a file or directory tree copied into the built site.
type Asset struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"` // relative to site.directory
	Kind   string `yaml:"kind"`   // "file" or "tree"
}

// SmokeConfig holds the fixed parameters of the discoverability check.
type SmokeConfig struct {
	SearchURL   string        `yaml:"search_url"`
	InputID     string        `yaml:"input_id"`
	Query       string        `yaml:"query"`
	ResultClass string        `yaml:"result_class"`
	Marker      string        `yaml:"marker"`
	Timeout     time.Duration `yaml:"timeout"`
	AlwaysClose bool          `yaml:"always_close"`
	// Protocol selects the session driver: "webdriver", "cdp", or empty to
	// pick CDP for ws:// endpoints and WebDriver for everything else.
	Protocol string `yaml:"protocol,omitempty"`
	// Browser is the WebDriver browserName capability; empty lets the grid choose.
	Browser string `yaml:"browser,omitempty"`
	// Stealth applies go-rod stealth evasions (cdp only).
	Stealth bool `yaml:"stealth"`
}

// MetricsConfig enables writing a Prometheus textfile after each command.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file is absent.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if envErr := loadEnvFile(); envErr != nil {
			slog.Debug("No .env file loaded", "error", envErr)
		}
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
		return Default(), nil
	}
	return Load(configPath)
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	header := "# sitehooks configuration\n# Placeholders in replacements: ${version} (v1.2.3) and ${semver} (1.2.3).\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	slog.Info("Configuration file created", "path", configPath)
	return nil
}

// expandEnv expands environment variables in the raw YAML, leaving the
// replacement template variables for the manifest rewriter.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		switch key {
		case "version", "semver":
			return "${" + key + "}"
		}
		return os.Getenv(key)
	})
}
