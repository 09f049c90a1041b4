package release

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
)

var testSig = &object.Signature{Name: "Release Bot", Email: "release@example.com", When: time.Unix(1700000000, 0)}

func initRepo(t *testing.T) (string, *git.Repository, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# docs\n"), 0o600))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{Author: testSig})
	require.NoError(t, err)
	return dir, repo, hash
}

func resolveGit(t *testing.T, dir string) (Reference, error) {
	t.Helper()
	return NewResolver(config.ReleaseConfig{Source: config.ReleaseSourceGit, RepoPath: dir}).Resolve(context.Background())
}

func TestResolver_GitBranch(t *testing.T) {
	dir, _, _ := initRepo(t)

	ref, err := resolveGit(t, dir)
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", ref.Raw)
	_, ok := ref.Version(config.DefaultTagPrefix)
	require.False(t, ok)
}

func TestResolver_GitLightweightTag(t *testing.T) {
	dir, repo, hash := initRepo(t)
	_, err := repo.CreateTag("v1.4.0", hash, nil)
	require.NoError(t, err)

	ref, err := resolveGit(t, dir)
	require.NoError(t, err)
	v, ok := ref.Version(config.DefaultTagPrefix)
	require.True(t, ok)
	require.Equal(t, "v1.4.0", v)
}

func TestResolver_GitAnnotatedTagFromSubdir(t *testing.T) {
	dir, repo, hash := initRepo(t)
	_, err := repo.CreateTag("v2.0.0", hash, &git.CreateTagOptions{Tagger: testSig, Message: "release"})
	require.NoError(t, err)
	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	ref, err := resolveGit(t, sub)
	require.NoError(t, err)
	require.Equal(t, "refs/tags/v2.0.0", ref.Raw)
}

func TestResolver_GitPicksHighestVersionTag(t *testing.T) {
	dir, repo, hash := initRepo(t)
	for _, name := range []string{"v1.9", "v1.10", "v1.10.0-rc.1", "latest"} {
		_, err := repo.CreateTag(name, hash, nil)
		require.NoError(t, err)
	}

	ref, err := resolveGit(t, dir)
	require.NoError(t, err)
	require.Equal(t, "refs/tags/v1.10", ref.Raw)
}

func TestNewestTag(t *testing.T) {
	tests := []struct {
		name string
		refs []string
		want string
	}{
		{"minor above nine", []string{"refs/tags/v1.9.0", "refs/tags/v1.10.0"}, "refs/tags/v1.10.0"},
		{"release beats prerelease", []string{"refs/tags/v2.0.0-rc.2", "refs/tags/v2.0.0"}, "refs/tags/v2.0.0"},
		{"version beats other names", []string{"refs/tags/stable", "refs/tags/v0.1.0"}, "refs/tags/v0.1.0"},
		{"no versions falls back to name order", []string{"refs/tags/alpha", "refs/tags/beta"}, "refs/tags/beta"},
		{"single tag", []string{"refs/tags/v3"}, "refs/tags/v3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, newestTag(tt.refs))
		})
	}
}

func TestResolver_GitNotARepository(t *testing.T) {
	_, err := resolveGit(t, t.TempDir())
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRelease))
}
