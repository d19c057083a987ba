package actions

import (
	"context"
	"fmt"
	"time"

	"rechain.dev/rechain/internal/chain"
	"rechain.dev/rechain/internal/config"
	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/internal/runtime"
	"rechain.dev/rechain/internal/tui"
)

// WalkOptions control how a chain walk reacts to conflicts
type WalkOptions struct {
	// Wait blocks until conflicts are resolved instead of exiting
	Wait bool
	// ConflictTimeout bounds how long a wait may last. Zero means the
	// repository's configured timeout.
	ConflictTimeout time.Duration
}

// loadChain validates the branch list and records every branch's current tip
func loadChain(names []string) (*chain.Chain, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no branches given")
	}
	return chain.Load(names)
}

// printChain renders the commit tree spanned by the chain's branches. The
// tree is also structurally checked: merge commits and commits carried by
// more than one branch cannot be rebased one branch at a time.
func printChain(splog *tui.Splog, title string, names []string, verify bool) error {
	ancestor, err := chain.CommonAncestor(names...)
	if err != nil {
		splog.Debug("Skipping tree render: %v", err)
		return nil
	}

	root, err := chain.BuildTree(ancestor, names)
	if err != nil {
		splog.Debug("Skipping tree render: %v", err)
		return nil
	}

	if verify {
		if err := chain.Verify(root); err != nil {
			return err
		}
	}

	splog.Info("%s", tui.ColorCyan(title))
	for _, line := range chain.RenderLines(root) {
		splog.Info("%s", line)
	}
	splog.Newline()
	return nil
}

// runWalk drives a chain walk to completion, handling conflicts along the
// way. On conflict the state needed by `rechain continue` is persisted first;
// then either the command exits with an error, or (in wait mode, or when the
// user opts in at the prompt) it blocks until the conflict is resolved,
// finishes the interrupted rebase itself and resumes the walk.
func runWalk(rctx *runtime.Context, walk func(context.Context) (*chain.WalkResult, error), ch *chain.Chain, opts WalkOptions) error {
	ctx := context.Background()
	splog := rctx.Splog

	timeout := opts.ConflictTimeout
	if timeout <= 0 {
		seconds, err := config.GetConflictTimeoutSeconds(rctx.RepoRoot)
		if err != nil {
			return err
		}
		timeout = time.Duration(seconds) * time.Second
	}

	savedBranch, err := git.GetCurrentBranch()
	if err != nil {
		savedBranch = ""
	}

	result, err := walk(ctx)
	if err != nil {
		return err
	}

	wait := opts.Wait
	for result.Conflict != "" {
		state := &config.ContinuationState{
			Chain:                 ch.Names(),
			OldTips:               ch.OldTips(),
			Completed:             completedNames(ch),
			ConflictBranch:        result.Conflict,
			CurrentBranchOverride: savedBranch,
		}
		if err := config.PersistContinuationState(rctx.RepoRoot, state); err != nil {
			return fmt.Errorf("failed to persist continuation: %w", err)
		}

		PrintConflictStatus(ctx, result.Conflict, splog)

		if !wait {
			if !promptWaitForResolution() {
				return fmt.Errorf("hit conflict rebasing %s", result.Conflict)
			}
			wait = true
		}

		if err := resolveAndFinish(ctx, result.Conflict, timeout, splog); err != nil {
			return err
		}

		newTip, err := git.GetRevision(result.Conflict)
		if err != nil {
			return err
		}
		ch.MarkRebased(result.Conflict, newTip)
		restoreCheckout(ctx, savedBranch)
		splog.Info("Resolved rebase conflict for %s.", tui.ColorGreen(result.Conflict))

		result, err = ch.ResumeWalk(ctx)
		if err != nil {
			return err
		}
	}

	if err := config.ClearContinuationState(rctx.RepoRoot); err != nil {
		splog.Debug("Failed to clear continuation state: %v", err)
	}

	for _, name := range result.Completed {
		splog.Debug("Rebased %s", name)
	}

	return nil
}

// resolveAndFinish blocks until the conflicted rebase of branchName has been
// resolved and run to completion, repeating the wait whenever finishing the
// rebase surfaces another conflict in a later commit of the same branch.
func resolveAndFinish(ctx context.Context, branchName string, timeout time.Duration, splog *tui.Splog) error {
	for {
		if err := waitForConflictResolution(ctx, branchName, timeout, splog); err != nil {
			return err
		}

		result, err := finishConflictedRebase(ctx, branchName)
		if err != nil {
			return err
		}
		if result == git.RebaseDone {
			return nil
		}

		PrintConflictStatus(ctx, branchName, splog)
	}
}

func completedNames(ch *chain.Chain) []string {
	var names []string
	for _, b := range ch.Branches {
		if b.Rebased {
			names = append(names, b.Name)
		}
	}
	return names
}

func restoreCheckout(ctx context.Context, savedBranch string) {
	if savedBranch == "" {
		return
	}
	_ = git.CheckoutBranch(ctx, savedBranch)
}
