package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/metrics"
	"git.home.luguber.info/inful/sitehooks/internal/smoke"
)

// Global is shared state bound into every command.
type Global struct {
	Context context.Context
	Logger  *slog.Logger
	// Out receives user-facing progress lines. Defaults to stdout.
	Out io.Writer
	// Dialer opens smoke-test browser sessions. Nil selects go-rod.
	Dialer smoke.Dialer
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitehooks.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	PreBuild  PreBuildCmd  `cmd:"" name:"pre-build" help:"Run the pre-build hooks (stamp the chart version)"`
	PostBuild PostBuildCmd `cmd:"" name:"post-build" help:"Run the post-build hooks (stamp and publish the compose file, publish the API reference)"`
	Smoke     SmokeCmd     `cmd:"" help:"Check that the project is discoverable through a web search in a remote browser"`
	Init      InitCmd      `cmd:"" help:"Write the default configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// runRecorder is the metrics recorder of one command run. It only exports
// when a textfile path is configured.
type runRecorder struct {
	metrics.Recorder
	prom     *metrics.PrometheusRecorder
	textfile string
}

func newRunRecorder(cfg *config.Config) *runRecorder {
	if cfg.Metrics.Textfile == "" {
		return &runRecorder{Recorder: metrics.NoopRecorder{}}
	}
	pr := metrics.NewPrometheusRecorder(prom.NewRegistry())
	return &runRecorder{Recorder: pr, prom: pr, textfile: cfg.Metrics.Textfile}
}

// flush writes the textfile; failures are logged, never fatal.
func (r *runRecorder) flush(logger *slog.Logger) {
	if r.prom == nil {
		return
	}
	if err := r.prom.WriteTextfile(r.textfile); err != nil {
		logger.Warn("Failed to write metrics textfile", logfields.Path(r.textfile), logfields.Error(err))
	}
}
