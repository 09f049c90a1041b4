package hooks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/metrics"
	"git.home.luguber.info/inful/sitehooks/internal/release"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type project struct {
	root    string
	site    string
	chart   string
	compose string
	docs    string
	cfg     *config.Config
}

func newProject(t *testing.T) project {
	t.Helper()
	root := t.TempDir()
	p := project{
		root:    root,
		site:    filepath.Join(root, "site"),
		chart:   filepath.Join(root, "distribution/kubernetes/chart/Chart.yaml"),
		compose: filepath.Join(root, "distribution/docker/docker-compose.yml"),
		docs:    filepath.Join(root, ".artifacts/core-documentation/doc"),
	}
	for path, body := range map[string]string{
		p.chart:                             "version: 0.0.0-placeholder\n",
		p.compose:                           "image: webgrid/node:latest\nproxy: webgrid/proxy:latest\n",
		filepath.Join(p.docs, "index.html"): "<html></html>",
		filepath.Join(p.docs, "a/b/c.html"): "<p>c</p>",
		filepath.Join(p.site, "index.html"): "<html>site</html>",
	} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	cfg := config.Default()
	cfg.Site.Directory = p.site
	cfg.PreBuild.Manifests[0].Path = p.chart
	cfg.PostBuild.Manifests[0].Path = p.compose
	cfg.PostBuild.Assets[0].Source = p.compose
	cfg.PostBuild.Assets[1].Source = p.docs
	p.cfg = cfg
	return p
}

func (p project) siteConfig(ref string) *SiteConfig {
	return &SiteConfig{SiteDir: p.site, Config: p.cfg, Reference: release.Reference{Raw: ref}}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDefaultRegistry_ReleaseBuild(t *testing.T) {
	p := newProject(t)
	reg := DefaultRegistry(nil, discard)
	site := p.siteConfig("refs/tags/v1.2.3")

	pre, err := reg.Run(context.Background(), StagePreBuild, site)
	require.NoError(t, err)
	require.Len(t, pre, 1)
	require.Equal(t, "version: 1.2.3\n", readFile(t, p.chart))

	post, err := reg.Run(context.Background(), StagePostBuild, site)
	require.NoError(t, err)
	require.Len(t, post, 1)
	require.Equal(t, 2, post[0].Manifests[0].Replacements)
	require.NotNil(t, post[0].Published)
	require.Equal(t, 3, post[0].Published.Files)

	want := "image: webgrid/node:v1.2.3\nproxy: webgrid/proxy:v1.2.3\n"
	require.Equal(t, want, readFile(t, p.compose))
	require.Equal(t, want, readFile(t, filepath.Join(p.site, "docker-compose.yml")))
	require.Equal(t, "<p>c</p>", readFile(t, filepath.Join(p.site, "rust-doc/a/b/c.html")))
}

func TestDefaultRegistry_BranchBuildPublishesUnstampedCompose(t *testing.T) {
	p := newProject(t)
	reg := DefaultRegistry(nil, discard)
	site := p.siteConfig("refs/heads/main")

	_, err := reg.Run(context.Background(), StagePreBuild, site)
	require.NoError(t, err)
	require.Equal(t, "version: 0.0.0-placeholder\n", readFile(t, p.chart))

	_, err = reg.Run(context.Background(), StagePostBuild, site)
	require.NoError(t, err)
	require.Equal(t, "image: webgrid/node:latest\nproxy: webgrid/proxy:latest\n", readFile(t, filepath.Join(p.site, "docker-compose.yml")))
}

func TestPostBuild_SecondRunCollides(t *testing.T) {
	p := newProject(t)
	reg := DefaultRegistry(nil, discard)
	site := p.siteConfig("")

	_, err := reg.Run(context.Background(), StagePostBuild, site)
	require.NoError(t, err)

	_, err = reg.Run(context.Background(), StagePostBuild, site)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryAlreadyExists))
}

func TestPreBuild_MissingChartIsFatal(t *testing.T) {
	p := newProject(t)
	require.NoError(t, os.Remove(p.chart))

	_, err := DefaultRegistry(nil, discard).Run(context.Background(), StagePreBuild, p.siteConfig(""))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestHook_NilSite(t *testing.T) {
	_, err := NewPreBuildHook(nil, discard).Run(context.Background(), nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
	_, err = NewPostBuildHook(nil, discard).Run(context.Background(), &SiteConfig{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
}

type fakeHook struct {
	name  string
	stage Stage
	err   error
	calls *[]string
}

func (f fakeHook) Name() string { return f.name }
func (f fakeHook) Stage() Stage { return f.stage }
func (f fakeHook) Run(context.Context, *SiteConfig) (Result, error) {
	*f.calls = append(*f.calls, f.name)
	return Result{Stage: f.stage, Hook: f.name}, f.err
}

type countingRecorder struct {
	metrics.NoopRecorder
	results map[string]metrics.ResultLabel
	timed   int
}

func (c *countingRecorder) IncHookResult(_ string, hook string, result metrics.ResultLabel) {
	c.results[hook] = result
}

func (c *countingRecorder) ObserveHookDuration(string, string, time.Duration) { c.timed++ }

func TestRegistry(t *testing.T) {
	var calls []string
	rec := &countingRecorder{results: map[string]metrics.ResultLabel{}}
	reg := NewRegistry(rec, discard)

	require.NoError(t, reg.Register(fakeHook{name: "a", stage: StagePostBuild, calls: &calls}))
	require.NoError(t, reg.Register(fakeHook{name: "b", stage: StagePostBuild, err: errors.New("boom"), calls: &calls}))
	require.NoError(t, reg.Register(fakeHook{name: "c", stage: StagePostBuild, calls: &calls}))
	require.NoError(t, reg.Register(fakeHook{name: "a", stage: StagePreBuild, calls: &calls}))

	require.ErrorContains(t, reg.Register(fakeHook{name: "a", stage: StagePostBuild, calls: &calls}), "already registered")
	require.ErrorContains(t, reg.Register(fakeHook{name: "z", stage: "deploy", calls: &calls}), "unknown stage")
	require.Error(t, reg.Register(nil))

	results, err := reg.Run(context.Background(), StagePostBuild, &SiteConfig{})
	require.ErrorContains(t, err, "post-build hook b: boom")
	require.Len(t, results, 2)
	require.Equal(t, []string{"a", "b"}, calls)
	require.Equal(t, metrics.ResultSuccess, rec.results["a"])
	require.Equal(t, metrics.ResultFailed, rec.results["b"])
	require.Equal(t, 2, rec.timed)

	require.Len(t, reg.Hooks(StagePreBuild), 1)
}
