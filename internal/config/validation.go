package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate checks the configuration for values the hooks cannot act on.
func (c *Config) Validate() error {
	switch c.Release.Source {
	case ReleaseSourceEnv, ReleaseSourceGit:
	default:
		return fmt.Errorf("release.source must be %q or %q, got %q", ReleaseSourceEnv, ReleaseSourceGit, c.Release.Source)
	}
	if c.Release.TagPrefix == "" {
		return errors.New("release.tag_prefix must not be empty")
	}

	seen := make(map[string]struct{})
	for _, stage := range []struct {
		name string
		cfg  StageConfig
	}{{"pre_build", c.PreBuild}, {"post_build", c.PostBuild}} {
		for i, m := range stage.cfg.Manifests {
			if err := validateRule(m); err != nil {
				return fmt.Errorf("%s.manifests[%d]: %w", stage.name, i, err)
			}
			if _, dup := seen[m.Name]; dup {
				return fmt.Errorf("%s.manifests[%d]: duplicate rule name %q", stage.name, i, m.Name)
			}
			seen[m.Name] = struct{}{}
		}
		for i, a := range stage.cfg.Assets {
			if err := validateAsset(a); err != nil {
				return fmt.Errorf("%s.assets[%d]: %w", stage.name, i, err)
			}
		}
	}
	// The site does not exist before the build runs.
	if len(c.PreBuild.Assets) > 0 {
		return errors.New("pre_build.assets: assets can only be published after the build")
	}

	if c.Smoke.Timeout <= 0 {
		return errors.New("smoke.timeout must be positive")
	}
	switch c.Smoke.Protocol {
	case "", ProtocolWebDriver, ProtocolCDP:
	default:
		return fmt.Errorf("smoke.protocol must be %q or %q, got %q", ProtocolWebDriver, ProtocolCDP, c.Smoke.Protocol)
	}
	return nil
}

func validateRule(m ManifestRule) error {
	switch {
	case m.Name == "":
		return errors.New("name is required")
	case m.Path == "":
		return errors.New("path is required")
	case m.Placeholder == "":
		return errors.New("placeholder is required")
	}
	switch m.Mode {
	case ModeText:
		if len(m.Keys) > 0 {
			return errors.New("keys are only valid in yaml mode")
		}
	case ModeYAML:
		if len(m.Keys) == 0 {
			return errors.New("yaml mode requires at least one key")
		}
	default:
		return fmt.Errorf("unknown mode %q", m.Mode)
	}
	return nil
}

func validateAsset(a Asset) error {
	if a.Source == "" {
		return errors.New("source is required")
	}
	if a.Target == "" || !filepath.IsLocal(a.Target) {
		return fmt.Errorf("target %q must be a relative path inside the site directory", a.Target)
	}
	if a.Kind != AssetFile && a.Kind != AssetTree {
		return fmt.Errorf("unknown kind %q", a.Kind)
	}
	return nil
}
