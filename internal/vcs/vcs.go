// Package vcs stamps builds with the revision of the enclosing git repository.
package vcs

import (
	"errors"
	"fmt"
	"log/slog"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// ShortHashLen is the number of hex digits kept from the commit hash.
const ShortHashLen = 7

// HeadRevision returns the short HEAD commit hash of the repository that
// contains dir. Parent directories are searched for .git. A directory outside
// any repository, or a repository without commits, yields "" and no error.
func HeadRevision(dir string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, ggit.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", fmt.Errorf("open git repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	return shorten(ref.Hash().String()), nil
}

// Stamp is HeadRevision with failures logged and swallowed.
func Stamp(dir string) string {
	rev, err := HeadRevision(dir)
	if err != nil {
		slog.Debug("Revision unavailable", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return rev
}

func shorten(hash string) string {
	if len(hash) > ShortHashLen {
		return hash[:ShortHashLen]
	}
	return hash
}
