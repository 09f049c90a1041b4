package manifest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/release"
)

const composeFixture = `services:
  node:
    image: webgrid/node:latest
  proxy:
    image: webgrid/proxy:latest
    environment:
      - LOG=info
`

func newTestRewriter() *Rewriter {
	return NewRewriter(config.DefaultTagPrefix).WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func composeRule(path string) Rule {
	return Rule{Name: "compose", Path: path, Placeholder: ":latest", Replacement: ":${version}", Mode: ModeText}
}

func TestApply_NonReleaseLeavesFileUntouched(t *testing.T) {
	for _, raw := range []string{"", "refs/heads/main", "refs/pull/7/merge", "refs/tags/", "v1.2.3"} {
		t.Run(raw, func(t *testing.T) {
			path := writeFile(t, composeFixture)

			out, err := newTestRewriter().Apply(context.Background(), composeRule(path), release.Reference{Raw: raw})
			require.NoError(t, err)
			require.False(t, out.Changed)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, composeFixture, string(after))
		})
	}
}

func TestApply_ReplacesEveryOccurrence(t *testing.T) {
	path := writeFile(t, composeFixture)

	out, err := newTestRewriter().Apply(context.Background(), composeRule(path), release.Reference{Raw: "refs/tags/v1.2.3"})
	require.NoError(t, err)
	require.True(t, out.Changed)
	require.Equal(t, 2, out.Replacements)
	require.Equal(t, "v1.2.3", out.Version)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strings.ReplaceAll(composeFixture, ":latest", ":v1.2.3"), string(after))
	require.Equal(t, 2, strings.Count(string(after), "v1.2.3"))
	require.NotContains(t, string(after), ":latest")
}

func TestApply_SuffixTokenReplacedByExactVersion(t *testing.T) {
	path := writeFile(t, "a: SUFFIX\nb: image-SUFFIX\n")
	rule := Rule{Name: "suffix", Path: path, Placeholder: "SUFFIX", Mode: ModeText}

	_, err := newTestRewriter().Apply(context.Background(), rule, release.Reference{Raw: "refs/tags/v1.2.3"})
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a: v1.2.3\nb: image-v1.2.3\n", string(after))
}

func TestApply_SemverReplacement(t *testing.T) {
	path := writeFile(t, "version: 0.0.0-placeholder\nappVersion: 0.0.0-placeholder\n")
	rule := Rule{Name: "chart", Path: path, Placeholder: "0.0.0-placeholder", Replacement: "${semver}"}

	out, err := newTestRewriter().Apply(context.Background(), rule, release.Reference{Raw: "refs/tags/v0.4.1"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Replacements)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "version: 0.4.1\nappVersion: 0.4.1\n", string(after))
}

func TestApply_PlaceholderMissingIsNotAnError(t *testing.T) {
	path := writeFile(t, "image: webgrid/node:v0.1.0\n")

	out, err := newTestRewriter().Apply(context.Background(), composeRule(path), release.Reference{Raw: "refs/tags/v1.0.0"})
	require.NoError(t, err)
	require.False(t, out.Changed)
	require.Zero(t, out.Replacements)
}

func TestApply_MissingFileIsFatal(t *testing.T) {
	rule := composeRule(filepath.Join(t.TempDir(), "missing.yml"))

	for _, raw := range []string{"", "refs/tags/v1.0.0"} {
		_, err := newTestRewriter().Apply(context.Background(), rule, release.Reference{Raw: raw})
		require.Error(t, err)
		require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	}
}

func TestApply_UnwritableFileIsFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	path := writeFile(t, composeFixture)
	require.NoError(t, os.Chmod(path, 0o444))

	_, err := newTestRewriter().Apply(context.Background(), composeRule(path), release.Reference{Raw: "refs/tags/v1.0.0"})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestApply_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRewriter().Apply(ctx, composeRule(writeFile(t, composeFixture)), release.Reference{Raw: "refs/tags/v1.0.0"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestApplyAll_StopsAtFirstError(t *testing.T) {
	good := writeFile(t, composeFixture)
	rules := []Rule{
		composeRule(good),
		composeRule(filepath.Join(t.TempDir(), "missing.yml")),
	}

	outcomes, err := newTestRewriter().ApplyAll(context.Background(), rules, release.Reference{Raw: "refs/tags/v3.0.0"})
	require.Error(t, err)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Changed)
}

func TestRulesFromConfig(t *testing.T) {
	rules := RulesFromConfig(config.Default().PreBuild.Manifests)
	require.Len(t, rules, 1)
	require.Equal(t, ModeText, rules[0].Mode)
	require.Equal(t, "1.2.3", rules[0].Expand("v1.2.3"))
	require.Equal(t, "x-${other}", Rule{Replacement: "x-${other}"}.Expand("v1"))
}
