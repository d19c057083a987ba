package git

import (
	"context"
	"fmt"
	"os"
)

// RebaseResult represents the result of a rebase operation
type RebaseResult int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates a conflict occurred during rebase
	RebaseConflict
)

// Rebase replays the commits of branchName that are not reachable from `from`
// onto `onto`.
//
// onto is the ref to rebase onto (the chain parent's new tip) and from is the
// exclusion boundary (the anchor: the merge base with the parent's old tip).
//
// On conflict the rebase is left in progress, exactly as git leaves it, and
// RebaseConflict is returned with a nil error.
func Rebase(ctx context.Context, branchName, onto, from string) (RebaseResult, error) {
	// Save current branch/detached HEAD so it can be restored afterwards
	currentBranch, err := GetCurrentBranch()
	var currentRev string
	if err != nil {
		currentBranch = ""
		currentRev, _ = RunGitCommandWithContext(ctx, "rev-parse", "HEAD")
	}

	branchRev, err := RunGitCommandWithContext(ctx, "rev-parse", branchName)
	if err != nil {
		return RebaseConflict, fmt.Errorf("failed to get revision for %s: %w", branchName, err)
	}

	// Rebase the branch's SHA rather than the branch itself so the operation
	// runs on a detached HEAD and never fights a worktree holding the branch.
	_, err = RunGitCommandWithContext(ctx, "rebase", "--onto", onto, from, branchRev)
	if err != nil {
		if IsRebaseInProgress(ctx) {
			return RebaseConflict, nil
		}
		// Not a conflict: clean up and restore the original state
		_, _ = RunGitCommandWithContext(ctx, "rebase", "--abort")
		if currentBranch != "" {
			_ = CheckoutBranch(ctx, currentBranch)
		} else if currentRev != "" {
			_ = CheckoutDetached(ctx, currentRev)
		}
		return RebaseConflict, fmt.Errorf("rebase of %s onto %s failed: %w", branchName, onto, err)
	}

	newRev, err := RunGitCommandWithContext(ctx, "rev-parse", "HEAD")
	if err != nil {
		return RebaseConflict, fmt.Errorf("failed to get new revision after rebase: %w", err)
	}

	// Point the branch at the rebased commit
	_, err = RunGitCommandWithContext(ctx, "update-ref", "refs/heads/"+branchName, newRev)
	if err != nil {
		return RebaseConflict, fmt.Errorf("failed to update branch reference %s: %w", branchName, err)
	}

	if currentBranch != "" {
		if err := CheckoutBranch(ctx, currentBranch); err != nil {
			_ = CheckoutDetached(ctx, currentBranch)
		}
	} else if currentRev != "" {
		_ = CheckoutDetached(ctx, currentRev)
	}

	return RebaseDone, nil
}

// IsRebaseInProgress checks if a rebase is currently in progress
func IsRebaseInProgress(ctx context.Context) bool {
	gitDir, err := RunGitCommandWithContext(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return false
	}

	// Interactive rebase
	if _, err := os.Stat(gitDir + "/rebase-merge"); err == nil {
		return true
	}
	// Non-interactive rebase
	if _, err := os.Stat(gitDir + "/rebase-apply"); err == nil {
		return true
	}
	return false
}

// RebaseContinue continues an in-progress rebase
func RebaseContinue(ctx context.Context) (RebaseResult, error) {
	_, err := RunGitCommandWithContext(ctx, "-c", "core.editor=true", "rebase", "--continue")
	if err != nil {
		// Another conflict further along the commit range
		if IsRebaseInProgress(ctx) {
			return RebaseConflict, nil
		}
		return RebaseConflict, fmt.Errorf("rebase continue failed: %w", err)
	}

	return RebaseDone, nil
}

// RebaseAbort aborts an in-progress rebase
func RebaseAbort(ctx context.Context) error {
	_, err := RunGitCommandWithContext(ctx, "rebase", "--abort")
	if err != nil {
		return fmt.Errorf("rebase abort failed: %w", err)
	}
	return nil
}

// GetRebaseHead returns the commit being rebased, or an error when no rebase
// is in progress.
func GetRebaseHead(ctx context.Context) (string, error) {
	sha, err := RunGitCommandWithContext(ctx, "rev-parse", "REBASE_HEAD")
	if err != nil {
		return "", fmt.Errorf("rebase head not found: %w", err)
	}
	return sha, nil
}
