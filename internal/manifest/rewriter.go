package manifest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/metrics"
	"git.home.luguber.info/inful/sitehooks/internal/release"
)

// Outcome reports what Apply did to one manifest.
type Outcome struct {
	Rule         string
	Path         string
	Version      string
	Changed      bool
	Replacements int
}

// Rewriter applies rules for a given release reference.
type Rewriter struct {
	tagPrefix string
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// NewRewriter creates a rewriter that treats references starting with tagPrefix as releases.
func NewRewriter(tagPrefix string) *Rewriter {
	return &Rewriter{tagPrefix: tagPrefix, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
}

// WithLogger sets the logger used for the per-rule log lines.
func (w *Rewriter) WithLogger(l *slog.Logger) *Rewriter {
	if l != nil {
		w.logger = l
	}
	return w
}

// WithRecorder attaches a metrics recorder.
func (w *Rewriter) WithRecorder(r metrics.Recorder) *Rewriter {
	w.recorder = metrics.OrNoop(r)
	return w
}

// Apply rewrites rule.Path in place when ref is a release. For any other
// reference the file is left byte-for-byte unchanged and no error is returned.
// A missing file is fatal in both cases.
func (w *Rewriter) Apply(ctx context.Context, rule Rule, ref release.Reference) (Outcome, error) {
	out := Outcome{Rule: rule.Name, Path: rule.Path}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	info, err := os.Stat(rule.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, ferrors.NotFoundError("manifest not found").WithCause(err).
				WithContext("rule", rule.Name).
				WithContext("path", rule.Path).
				Build()
		}
		return out, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat manifest").
			WithContext("path", rule.Path).
			Build()
	}
	if info.IsDir() {
		return out, ferrors.ManifestError("manifest path is a directory").WithContext("path", rule.Path).Build()
	}

	version, ok := ref.Version(w.tagPrefix)
	if !ok {
		w.logger.Info("Not a release build, leaving manifest unchanged",
			logfields.Rule(rule.Name), logfields.Path(rule.Path), logfields.Ref(ref.Raw))
		w.recorder.IncManifestRewrite(rule.Name, false, 0)
		return out, nil
	}
	out.Version = version

	data, err := os.ReadFile(rule.Path)
	if err != nil {
		return out, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read manifest").
			WithContext("path", rule.Path).
			Build()
	}

	replacement := rule.Expand(version)
	var (
		updated []byte
		count   int
	)
	switch rule.Mode {
	case ModeYAML:
		updated, count, err = replaceInYAML(data, rule.Keys, rule.Placeholder, replacement)
		if err != nil {
			return out, ferrors.WrapError(err, ferrors.CategoryManifest, "rewrite yaml manifest").
				WithContext("path", rule.Path).
				Build()
		}
	case ModeText, "":
		count = strings.Count(string(data), rule.Placeholder)
		updated = []byte(strings.ReplaceAll(string(data), rule.Placeholder, replacement))
	default:
		return out, ferrors.ConfigError("unknown manifest mode").WithContext("mode", string(rule.Mode)).Build()
	}

	if count == 0 {
		w.logger.Warn("Placeholder not present in manifest",
			logfields.Rule(rule.Name), logfields.Path(rule.Path), slog.String("placeholder", rule.Placeholder))
		w.recorder.IncManifestRewrite(rule.Name, false, 0)
		return out, nil
	}

	if err := os.WriteFile(rule.Path, updated, info.Mode().Perm()); err != nil {
		return out, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write manifest").
			WithContext("path", rule.Path).
			Build()
	}

	out.Changed = true
	out.Replacements = count
	w.recorder.IncManifestRewrite(rule.Name, true, count)
	w.logger.Info("Stamped release version into manifest",
		logfields.Rule(rule.Name), logfields.Path(rule.Path), logfields.Version(version), logfields.Count(count))
	return out, nil
}

// ApplyAll applies rules in order and stops at the first error.
func (w *Rewriter) ApplyAll(ctx context.Context, rules []Rule, ref release.Reference) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(rules))
	for _, rule := range rules {
		out, err := w.Apply(ctx, rule, ref)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
