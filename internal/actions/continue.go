package actions

import (
	"context"
	"fmt"

	"rechain.dev/rechain/internal/chain"
	"rechain.dev/rechain/internal/config"
	rechainerrors "rechain.dev/rechain/internal/errors"
	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/internal/runtime"
	"rechain.dev/rechain/internal/tui"
)

// ContinueOptions are options for the continue command
type ContinueOptions struct {
	// AddAll stages everything before continuing the rebase
	AddAll bool
	WalkOptions
}

// ContinueAction finishes a conflicted chain rebase: it runs the interrupted
// rebase to completion, points the conflicted branch at the result and walks
// the remaining branches of the persisted chain.
func ContinueAction(rctx *runtime.Context, opts ContinueOptions) error {
	ctx := context.Background()
	splog := rctx.Splog

	if !git.IsRebaseInProgress(ctx) {
		// Clear any stale continuation state
		_ = config.ClearContinuationState(rctx.RepoRoot)
		return fmt.Errorf("nothing to continue: %w", rechainerrors.ErrRebaseNotInProgress)
	}

	state, err := config.GetContinuationState(rctx.RepoRoot)
	if err != nil {
		return fmt.Errorf("no continuation state found. Use 'git rebase --continue' directly")
	}

	if opts.AddAll {
		if err := git.AddAll(ctx); err != nil {
			return fmt.Errorf("failed to stage changes: %w", err)
		}
	}

	result, err := finishConflictedRebase(ctx, state.ConflictBranch)
	if err != nil {
		return fmt.Errorf("failed to continue rebase: %w", err)
	}
	if result == git.RebaseConflict {
		// Another conflict in the same branch; state on disk is still valid
		PrintConflictStatus(ctx, state.ConflictBranch, splog)
		return fmt.Errorf("rebase conflict is not yet resolved")
	}

	restoreCheckout(ctx, state.CurrentBranchOverride)
	splog.Info("Resolved rebase conflict for %s.", tui.ColorGreen(state.ConflictBranch))

	done := append(append([]string{}, state.Completed...), state.ConflictBranch)
	ch, err := chain.Resume(state.Chain, state.OldTips, done)
	if err != nil {
		return err
	}

	walk := func(ctx context.Context) (*chain.WalkResult, error) {
		return ch.ResumeWalk(ctx)
	}
	if err := runWalk(rctx, walk, ch, opts.WalkOptions); err != nil {
		return err
	}

	if err := printChain(splog, "Updated chain:", ch.Names(), false); err != nil {
		return err
	}
	splog.Info("%s", tui.ColorGreen("Chain is up to date."))
	return nil
}
