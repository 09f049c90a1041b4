package config

import "time"

const (
	ReleaseSourceEnv = "env"
	ReleaseSourceGit = "git"

	DefaultEnvVar    = "GITHUB_REF"
	DefaultTagPrefix = "refs/tags/"

	ModeText = "text"
	ModeYAML = "yaml"

	AssetFile = "file"
	AssetTree = "tree"

	ProtocolWebDriver = "webdriver"
	ProtocolCDP       = "cdp"

	DefaultSmokeTimeout = 10 * time.Second
)

// Default returns the configuration matching the project's documentation layout:
// the Helm chart version is stamped before the build, the compose file is
// stamped and published after it, together with the generated API reference.
func Default() *Config {
	cfg := &Config{
		Release: ReleaseConfig{Source: ReleaseSourceEnv},
		PreBuild: StageConfig{
			Manifests: []ManifestRule{{
				Name:        "chart",
				Path:        "distribution/kubernetes/chart/Chart.yaml",
				Placeholder: "0.0.0-placeholder",
				Replacement: "${semver}",
			}},
		},
		PostBuild: StageConfig{
			Manifests: []ManifestRule{{
				Name:        "compose",
				Path:        "distribution/docker/docker-compose.yml",
				Placeholder: ":latest",
				Replacement: ":${version}",
			}},
			Assets: []Asset{
				{Source: "distribution/docker/docker-compose.yml", Target: "docker-compose.yml", Kind: AssetFile},
				{Source: ".artifacts/core-documentation/doc", Target: "rust-doc", Kind: AssetTree},
			},
		},
		Smoke: SmokeConfig{
			SearchURL:   "https://duckduckgo.com",
			InputID:     "search_form_input_homepage",
			Query:       "webgrid.dev",
			ResultClass: "result__a",
			Marker:      "WebGrid",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Release.Source == "" {
		c.Release.Source = ReleaseSourceEnv
	}
	if c.Release.EnvVar == "" {
		c.Release.EnvVar = DefaultEnvVar
	}
	if c.Release.TagPrefix == "" {
		c.Release.TagPrefix = DefaultTagPrefix
	}
	if c.Release.Source == ReleaseSourceGit && c.Release.RepoPath == "" {
		c.Release.RepoPath = "."
	}
	if c.Site.Directory == "" {
		c.Site.Directory = "site"
	}
	for _, stage := range []*StageConfig{&c.PreBuild, &c.PostBuild} {
		for i := range stage.Manifests {
			m := &stage.Manifests[i]
			if m.Mode == "" {
				m.Mode = ModeText
			}
			if m.Replacement == "" {
				m.Replacement = "${version}"
			}
		}
		for i := range stage.Assets {
			if stage.Assets[i].Kind == "" {
				stage.Assets[i].Kind = AssetFile
			}
		}
	}
	if c.Smoke.Timeout <= 0 {
		c.Smoke.Timeout = DefaultSmokeTimeout
	}
}
