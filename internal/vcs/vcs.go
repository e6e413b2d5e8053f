// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const shortHashLen = 8

// Revision identifies the checked-out commit.
type Revision struct {
	// Branch is empty for a detached HEAD.
	Branch string
	Hash   string
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Hash) > shortHashLen {
		return r.Hash[:shortHashLen]
	}
	return r.Hash
}

// String renders "branch@short" or "detached@short".
func (r Revision) String() string {
	branch := r.Branch
	if branch == "" {
		branch = "detached"
	}
	return branch + "@" + r.Short()
}

// Describe finds the git repository enclosing dir and returns its HEAD. It
// returns nil without error when dir is not inside a repository or the
// repository has no commits yet.
func Describe(dir string) (*Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read HEAD: %w", err)
	}

	rev := &Revision{Hash: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, nil
}
