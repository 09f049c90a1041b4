package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"unknown release source", func(c *Config) { c.Release.Source = "svn" }, "release.source"},
		{"rule without placeholder", func(c *Config) { c.PreBuild.Manifests[0].Placeholder = "" }, "placeholder is required"},
		{"duplicate rule names", func(c *Config) { c.PostBuild.Manifests[0].Name = "chart" }, "duplicate rule name"},
		{"yaml mode without keys", func(c *Config) { c.PreBuild.Manifests[0].Mode = ModeYAML }, "requires at least one key"},
		{"keys in text mode", func(c *Config) { c.PreBuild.Manifests[0].Keys = []string{"version"} }, "only valid in yaml mode"},
		{"unknown mode", func(c *Config) { c.PreBuild.Manifests[0].Mode = "toml" }, "unknown mode"},
		{"asset escaping site", func(c *Config) { c.PostBuild.Assets[0].Target = "../outside" }, "inside the site directory"},
		{"absolute asset target", func(c *Config) { c.PostBuild.Assets[0].Target = "/etc/passwd" }, "inside the site directory"},
		{"unknown asset kind", func(c *Config) { c.PostBuild.Assets[0].Kind = "zip" }, "unknown kind"},
		{"pre-build asset", func(c *Config) {
			c.PreBuild.Assets = []Asset{{Source: "a", Target: "b", Kind: AssetFile}}
		}, "only be published after the build"},
		{"zero smoke timeout", func(c *Config) { c.Smoke.Timeout = 0 }, "smoke.timeout"},
		{"cdp smoke protocol", func(c *Config) { c.Smoke.Protocol = ProtocolCDP }, ""},
		{"unknown smoke protocol", func(c *Config) { c.Smoke.Protocol = "playwright" }, "smoke.protocol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
