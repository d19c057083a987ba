package git

import (
	"fmt"

	rechainerrors "rechain.dev/rechain/internal/errors"
)

// GetMergeBaseByRef returns the merge base between two refs (branches, remote
// refs, tags or SHAs). It returns ErrNoCommonAncestor when the two refs share
// no history.
func GetMergeBaseByRef(ref1Name, ref2Name string) (string, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return "", err
	}

	hash1, err := resolveRefHash(repo, ref1Name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve ref1: %w", err)
	}

	hash2, err := resolveRefHash(repo, ref2Name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve ref2: %w", err)
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	commit1, err := repo.CommitObject(hash1)
	if err != nil {
		return "", fmt.Errorf("failed to get commit1: %w", err)
	}

	commit2, err := repo.CommitObject(hash2)
	if err != nil {
		return "", fmt.Errorf("failed to get commit2: %w", err)
	}

	mergeBases, err := commit1.MergeBase(commit2)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base: %w", err)
	}

	if len(mergeBases) == 0 {
		return "", rechainerrors.ErrNoCommonAncestor
	}

	return mergeBases[0].Hash.String(), nil
}

// GetForkPoint returns the commit at which ref forked from base, consulting
// base's reflog so that a fork point survives an amend or rebase of base.
// Falls back to the plain merge base when the reflog has no answer.
func GetForkPoint(base, ref string) (string, error) {
	forkPoint, err := RunGitCommand("merge-base", "--fork-point", base, ref)
	if err == nil && forkPoint != "" {
		return forkPoint, nil
	}
	return GetMergeBaseByRef(base, ref)
}

// IsAncestor checks if the first ref is an ancestor of the second ref
func IsAncestor(ancestor, descendant string) (bool, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return false, err
	}

	ancestorHash, err := resolveRefHash(repo, ancestor)
	if err != nil {
		return false, fmt.Errorf("failed to resolve ancestor ref: %w", err)
	}

	descendantHash, err := resolveRefHash(repo, descendant)
	if err != nil {
		return false, fmt.Errorf("failed to resolve descendant ref: %w", err)
	}

	if ancestorHash == descendantHash {
		return true, nil
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	ancestorCommit, err := repo.CommitObject(ancestorHash)
	if err != nil {
		return false, fmt.Errorf("failed to get ancestor commit: %w", err)
	}

	descendantCommit, err := repo.CommitObject(descendantHash)
	if err != nil {
		return false, fmt.Errorf("failed to get descendant commit: %w", err)
	}

	return ancestorCommit.IsAncestor(descendantCommit)
}
