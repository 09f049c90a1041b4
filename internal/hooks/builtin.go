package hooks

import (
	"context"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/manifest"
	"git.home.luguber.info/inful/sitehooks/internal/metrics"
	"git.home.luguber.info/inful/sitehooks/internal/publish"
)

// PreBuildHook stamps the release version into the pre-build manifests
// (the Helm chart by default).
type PreBuildHook struct {
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewPreBuildHook creates the pre-build hook.
func NewPreBuildHook(recorder metrics.Recorder, logger *slog.Logger) *PreBuildHook {
	return &PreBuildHook{recorder: metrics.OrNoop(recorder), logger: orDefault(logger)}
}

func (h *PreBuildHook) Name() string { return "stamp-manifests" }
func (h *PreBuildHook) Stage() Stage { return StagePreBuild }

// Run applies every pre_build manifest rule.
func (h *PreBuildHook) Run(ctx context.Context, site *SiteConfig) (Result, error) {
	res := Result{Stage: StagePreBuild, Hook: h.Name()}
	if err := checkSite(site); err != nil {
		return res, err
	}

	outcomes, err := newRewriter(site, h.logger, h.recorder).ApplyAll(ctx, manifest.RulesFromConfig(site.Config.PreBuild.Manifests), site.Reference)
	res.Manifests = outcomes
	return res, err
}

func newRewriter(site *SiteConfig, logger *slog.Logger, recorder metrics.Recorder) *manifest.Rewriter {
	return manifest.NewRewriter(site.Config.Release.TagPrefix).WithLogger(logger).WithRecorder(recorder)
}

// PostBuildHook stamps the post-build manifests (the compose file) and then
// publishes the configured assets into the built site.
type PostBuildHook struct {
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewPostBuildHook creates the post-build hook.
func NewPostBuildHook(recorder metrics.Recorder, logger *slog.Logger) *PostBuildHook {
	return &PostBuildHook{recorder: metrics.OrNoop(recorder), logger: orDefault(logger)}
}

func (h *PostBuildHook) Name() string { return "publish-assets" }
func (h *PostBuildHook) Stage() Stage { return StagePostBuild }

// Run rewrites post_build manifests before copying them, so the published
// compose file carries the release tag.
func (h *PostBuildHook) Run(ctx context.Context, site *SiteConfig) (Result, error) {
	res := Result{Stage: StagePostBuild, Hook: h.Name()}
	if err := checkSite(site); err != nil {
		return res, err
	}

	outcomes, err := newRewriter(site, h.logger, h.recorder).ApplyAll(ctx, manifest.RulesFromConfig(site.Config.PostBuild.Manifests), site.Reference)
	res.Manifests = outcomes
	if err != nil {
		return res, err
	}

	publisher := publish.NewPublisher(site.SiteDir).WithLogger(h.logger).WithRecorder(h.recorder)
	report, err := publisher.Publish(ctx, publish.AssetsFromConfig(site.Config.PostBuild.Assets))
	res.Published = &report
	return res, err
}

func checkSite(site *SiteConfig) error {
	if site == nil || site.Config == nil {
		return ferrors.InternalError("hook called without site configuration").Build()
	}
	return nil
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// timed runs h and records its duration and result.
func timed(ctx context.Context, h Hook, site *SiteConfig, recorder metrics.Recorder, logger *slog.Logger) (Result, error) {
	start := time.Now()
	logger.Info("Running build hook", logfields.Stage(string(h.Stage())), logfields.Hook(h.Name()))

	res, err := h.Run(ctx, site)
	res.Duration = time.Since(start)
	recorder.ObserveHookDuration(string(h.Stage()), h.Name(), res.Duration)

	if err != nil {
		recorder.IncHookResult(string(h.Stage()), h.Name(), metrics.ResultFailed)
		return res, err
	}
	recorder.IncHookResult(string(h.Stage()), h.Name(), metrics.ResultSuccess)
	logger.Info("Build hook finished",
		logfields.Stage(string(h.Stage())), logfields.Hook(h.Name()),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}
