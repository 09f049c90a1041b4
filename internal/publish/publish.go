// Package publish copies release assets into an already built documentation
// site: single files (the stamped compose file) and whole generated trees
// (the API reference). Content is copied verbatim.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/metrics"
)

// Kind distinguishes single-file assets from directory trees.
type Kind string

const (
	KindFile Kind = config.AssetFile
	KindTree Kind = config.AssetTree
)

// Asset is one source path copied to Target, relative to the site directory.
type Asset struct {
	Source string
	Target string
	Kind   Kind
}

// Entry records a published asset.
type Entry struct {
	Asset
	Destination string
	Files       int
	Bytes       int64
}

// Report summarises a Publish call.
type Report struct {
	Entries []Entry
	Files   int
	Bytes   int64
}

// AssetsFromConfig converts configured assets.
func AssetsFromConfig(assets []config.Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, Asset{Source: a.Source, Target: a.Target, Kind: Kind(a.Kind)})
	}
	return out
}

// Publisher copies assets into SiteDir.
type Publisher struct {
	siteDir  string
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewPublisher creates a publisher for the built site at siteDir.
func NewPublisher(siteDir string) *Publisher {
	return &Publisher{siteDir: siteDir, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
}

// WithLogger sets the logger.
func (p *Publisher) WithLogger(l *slog.Logger) *Publisher {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithRecorder attaches a metrics recorder.
func (p *Publisher) WithRecorder(r metrics.Recorder) *Publisher {
	p.recorder = metrics.OrNoop(r)
	return p
}

// Publish copies assets in order. Any missing source, missing site directory
// or tree destination that already exists is fatal; assets copied before the
// failure are left in place.
func (p *Publisher) Publish(ctx context.Context, assets []Asset) (Report, error) {
	var report Report

	info, err := os.Stat(p.siteDir)
	if err != nil || !info.IsDir() {
		return report, ferrors.NotFoundError("site output directory does not exist").WithCause(err).
			WithContext("path", p.siteDir).
			Build()
	}

	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entry, err := p.publishOne(ctx, asset)
		if err != nil {
			return report, err
		}
		report.Entries = append(report.Entries, entry)
		report.Files += entry.Files
		report.Bytes += entry.Bytes
		p.recorder.AddPublished(string(asset.Kind), entry.Files, entry.Bytes)
		p.logger.Info("Published site asset",
			logfields.Source(asset.Source), logfields.Target(entry.Destination),
			logfields.Count(entry.Files), logfields.Bytes(entry.Bytes))
	}
	return report, nil
}

func (p *Publisher) publishOne(ctx context.Context, asset Asset) (Entry, error) {
	entry := Entry{Asset: asset, Destination: filepath.Join(p.siteDir, asset.Target)}

	srcInfo, err := os.Stat(asset.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entry, ferrors.NotFoundError("asset source does not exist").WithCause(err).
				WithContext("source", asset.Source).
				Build()
		}
		return entry, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat asset source").
			WithContext("source", asset.Source).
			Build()
	}

	switch asset.Kind {
	case KindFile:
		if srcInfo.IsDir() {
			return entry, ferrors.FileSystemError("file asset source is a directory").
				WithContext("source", asset.Source).
				Build()
		}
		if err := os.MkdirAll(filepath.Dir(entry.Destination), 0o755); err != nil {
			return entry, wrapCopyError(err, asset)
		}
		n, err := copyFile(asset.Source, entry.Destination)
		if err != nil {
			return entry, wrapCopyError(err, asset)
		}
		entry.Files, entry.Bytes = 1, n

	case KindTree:
		if !srcInfo.IsDir() {
			return entry, ferrors.FileSystemError("tree asset source is not a directory").
				WithContext("source", asset.Source).
				Build()
		}
		// Never merge into an existing directory.
		if _, err := os.Lstat(entry.Destination); err == nil {
			return entry, ferrors.AlreadyExistsError("tree asset destination already exists").
				WithContext("target", entry.Destination).
				Build()
		}
		if err := os.MkdirAll(filepath.Dir(entry.Destination), 0o755); err != nil {
			return entry, wrapCopyError(err, asset)
		}
		files, n, err := copyTree(ctx, asset.Source, entry.Destination)
		if err != nil {
			return entry, wrapCopyError(err, asset)
		}
		entry.Files, entry.Bytes = files, n

	default:
		return entry, ferrors.ConfigError(fmt.Sprintf("unknown asset kind %q", asset.Kind)).Build()
	}
	return entry, nil
}

func wrapCopyError(err error, asset Asset) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy asset").
		WithContext("source", asset.Source).
		WithContext("target", asset.Target).
		Build()
}
