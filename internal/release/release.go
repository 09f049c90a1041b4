// Package release resolves the release reference a build runs for and derives
// the version string that the manifest rewriter stamps into packaging files.
//
// A reference is only a release when it carries the tag prefix
// (refs/tags/ by default). Everything else, including an unset variable, is a
// regular build and must leave manifests untouched.
package release

import (
	"context"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
)

// Reference is the raw release signal, e.g. "refs/tags/v1.2.3".
type Reference struct {
	Raw    string
	Source string
}

// IsZero reports whether no reference was found.
func (r Reference) IsZero() bool { return r.Raw == "" }

// Version returns the part of the reference after prefix. It reports false for
// anything that is not tag shaped.
func (r Reference) Version(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	v, ok := strings.CutPrefix(r.Raw, prefix)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Semver strips the conventional leading "v" from a tag version.
func Semver(version string) string {
	return strings.TrimPrefix(version, "v")
}

// Resolver reads the reference from the configured source.
type Resolver struct {
	cfg       config.ReleaseConfig
	lookupEnv func(string) (string, bool)
}

// NewResolver creates a resolver for the given release configuration.
func NewResolver(cfg config.ReleaseConfig) *Resolver {
	return &Resolver{cfg: cfg, lookupEnv: os.LookupEnv}
}

// Resolve returns the current reference. An unset environment variable is not
// an error; it yields a zero Reference.
func (r *Resolver) Resolve(ctx context.Context) (Reference, error) {
	switch r.cfg.Source {
	case config.ReleaseSourceGit:
		raw, err := headReference(ctx, r.cfg.RepoPath)
		if err != nil {
			return Reference{}, ferrors.ReleaseError("resolve release reference from git").WithCause(err).
				WithContext("repo_path", r.cfg.RepoPath).
				Build()
		}
		return Reference{Raw: raw, Source: config.ReleaseSourceGit}, nil
	case config.ReleaseSourceEnv, "":
		envVar := r.cfg.EnvVar
		if envVar == "" {
			envVar = config.DefaultEnvVar
		}
		raw, _ := r.lookupEnv(envVar)
		return Reference{Raw: strings.TrimSpace(raw), Source: "env:" + envVar}, nil
	default:
		return Reference{}, ferrors.ConfigError("unknown release source").
			WithContext("source", r.cfg.Source).
			Build()
	}
}
