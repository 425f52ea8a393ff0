package metadata

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
)

var errGitRepoNotFound = errors.New("git repo not found")

// Git derives the build version from the repository containing Dir as
// "<branch>@<short hash>", or the short hash alone on a detached HEAD. The
// device label is taken from Fallback.
type Git struct {
	Dir      string
	Fallback Info
}

// Resolve implements Resolver.
func (g Git) Resolve(context.Context) (Info, error) {
	repo, err := git.PlainOpenWithOptions(g.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return g.Fallback, errorf("%w", errGitRepoNotFound)
		}
		return g.Fallback, errorf("git repo open failed: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return g.Fallback, errorf("git head lookup failed: %w", err)
	}
	version := head.Hash().String()[:7]
	if head.Name().IsBranch() {
		version = head.Name().Short() + "@" + version
	}
	return fill(Info{BuildVersion: version}, g.Fallback), nil
}
