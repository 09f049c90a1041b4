package hooks

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	"git.home.luguber.info/inful/sitehooks/internal/manifest"
	"git.home.luguber.info/inful/sitehooks/internal/publish"
	"git.home.luguber.info/inful/sitehooks/internal/release"
)

// Stage is a documentation build lifecycle point.
type Stage string

const (
	StagePreBuild  Stage = "pre-build"
	StagePostBuild Stage = "post-build"
)

// SiteConfig is the configuration object handed to every hook.
type SiteConfig struct {
	// SiteDir is the generator's output directory.
	SiteDir   string
	Config    *config.Config
	Reference release.Reference
}

// Result is what a hook did.
type Result struct {
	Stage     Stage
	Hook      string
	Manifests []manifest.Outcome
	Published *publish.Report
	Duration  time.Duration
}

// Hook is a build lifecycle callback.
type Hook interface {
	Name() string
	Stage() Stage
	Run(ctx context.Context, site *SiteConfig) (Result, error)
}
