package release

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/blang/semver"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// headReference maps the repository HEAD to a reference string: the tag ref
// when HEAD is tagged, otherwise the branch ref HEAD points at.
func headReference(ctx context.Context, repoPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}

	tags, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}

	var matches []string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		// Annotated tags point at a tag object, not the commit.
		if tag, terr := repo.TagObject(ref.Hash()); terr == nil {
			commit, cerr := tag.Commit()
			if cerr != nil {
				return nil
			}
			target = commit.Hash
		} else if !errors.Is(terr, plumbing.ErrObjectNotFound) {
			return terr
		}
		if target == head.Hash() {
			matches = append(matches, ref.Name().String())
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan tags: %w", err)
	}

	if len(matches) > 0 {
		return newestTag(matches), nil
	}
	if head.Name() == plumbing.HEAD {
		// Detached HEAD without a tag: nothing to report.
		return "", nil
	}
	return head.Name().String(), nil
}

// newestTag picks the highest version among tag refs on the same commit.
// Tags that parse as versions beat those that do not; the rest fall back to
// name order so the pick stays deterministic.
func newestTag(refs []string) string {
	return slices.MaxFunc(refs, func(a, b string) int {
		va, errA := semver.ParseTolerant(plumbing.ReferenceName(a).Short())
		vb, errB := semver.ParseTolerant(plumbing.ReferenceName(b).Short())
		switch {
		case errA == nil && errB == nil:
			if c := va.Compare(vb); c != 0 {
				return c
			}
		case errA == nil:
			return 1
		case errB == nil:
			return -1
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}
