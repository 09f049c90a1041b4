package commands

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/hooks"
	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/release"
)

// PreBuildCmd implements the 'pre-build' command.
type PreBuildCmd struct {
	SiteDir string `name:"site-dir" help:"Override site.directory from the configuration"`
}

func (p *PreBuildCmd) Run(g *Global, root *CLI) error {
	return RunStage(g, root.Config, hooks.StagePreBuild, p.SiteDir)
}

// PostBuildCmd implements the 'post-build' command.
type PostBuildCmd struct {
	SiteDir string `name:"site-dir" help:"Override site.directory from the configuration"`
}

func (p *PostBuildCmd) Run(g *Global, root *CLI) error {
	return RunStage(g, root.Config, hooks.StagePostBuild, p.SiteDir)
}

// RunStage loads the configuration, resolves the release reference and runs
// the default hooks registered for stage.
func RunStage(g *Global, configPath string, stage hooks.Stage, siteDir string) error {
	ctx, logger := g.ctx(), g.logger()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if siteDir != "" {
		cfg.Site.Directory = siteDir
	}

	ref, err := release.NewResolver(cfg.Release).Resolve(ctx)
	if err != nil {
		return err
	}
	if v, ok := ref.Version(cfg.Release.TagPrefix); ok {
		logger.Info("Release build", logfields.Ref(ref.Raw), logfields.Version(v))
	} else {
		logger.Debug("Not a release build", logfields.Ref(ref.Raw), logfields.Source(ref.Source))
	}

	rec := newRunRecorder(cfg)
	defer rec.flush(logger)

	site := &hooks.SiteConfig{SiteDir: cfg.Site.Directory, Config: cfg, Reference: ref}
	results, err := hooks.DefaultRegistry(rec, logger).Run(ctx, stage, site)
	if err != nil {
		if _, ok := ferrors.AsClassified(err); ok {
			return err
		}
		return ferrors.WrapError(err, ferrors.CategoryInternal, fmt.Sprintf("%s hooks failed", stage)).Build()
	}

	out := g.out()
	for _, res := range results {
		for _, m := range res.Manifests {
			if m.Changed {
				_, _ = fmt.Fprintf(out, "Stamped %s into %s (%d replacements)\n", m.Version, m.Path, m.Replacements)
			}
		}
		if res.Published != nil {
			for _, e := range res.Published.Entries {
				_, _ = fmt.Fprintf(out, "Published %s -> %s (%d files)\n", e.Asset.Source, e.Destination, e.Files)
			}
		}
	}
	return nil
}
