package actions

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"

	rechainerrors "rechain.dev/rechain/internal/errors"
	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/internal/tui"
)

// conflictPollInterval is how often the resolution wait loop re-checks the
// index for unmerged files.
const conflictPollInterval = 2 * time.Second

// PrintConflictStatus displays conflict information and instructions to the user
func PrintConflictStatus(ctx context.Context, branchName string, splog *tui.Splog) {
	splog.Info("%s", tui.ColorRed(fmt.Sprintf("Hit conflict rebasing %s", branchName)))
	splog.Newline()

	unmergedFiles, err := git.GetUnmergedFiles(ctx)
	if err == nil && len(unmergedFiles) > 0 {
		splog.Info("%s", tui.ColorYellow("Unmerged files:"))
		for _, file := range unmergedFiles {
			splog.Info("%s", tui.ColorRed(file))
		}
		splog.Newline()
	}

	rebaseHead, err := git.GetRebaseHead(ctx)
	if err == nil && rebaseHead != "" {
		rebaseHeadShort := rebaseHead
		if len(rebaseHead) > 7 {
			rebaseHeadShort = rebaseHead[:7]
		}
		splog.Info("%s", tui.ColorYellow(fmt.Sprintf("You are here (resolving %s):", rebaseHeadShort)))
		splog.Newline()
	}

	splog.Info("%s", tui.ColorYellow("To fix and continue:"))
	splog.Info("(1) resolve the listed merge conflicts")
	splog.Info("(2) mark them as resolved with %s", tui.ColorCyan("git add ."))
	splog.Info("(3) run %s to finish rebasing the chain", tui.ColorCyan("rechain continue"))
	splog.Info("It's safe to cancel the ongoing rebase with %s.", tui.ColorCyan("git rebase --abort"))
}

// promptWaitForResolution asks whether to block until the conflict is
// resolved. Only asked on an interactive terminal; otherwise the answer is no.
func promptWaitForResolution() bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}

	wait := false
	prompt := &survey.Confirm{
		Message: "Wait here for the conflict to be resolved?",
		Default: false,
	}
	if err := survey.AskOne(prompt, &wait); err != nil {
		return false
	}
	return wait
}

// waitForConflictResolution blocks until every unmerged file has been staged,
// polling the index. Returns an error when the timeout expires or the rebase
// disappears (aborted from another terminal).
func waitForConflictResolution(ctx context.Context, branchName string, timeout time.Duration, splog *tui.Splog) error {
	splog.Info("Waiting for conflicts on %s to be resolved (timeout %s)...", branchName, timeout)

	deadline := time.Now().Add(timeout)
	for {
		if !git.IsRebaseInProgress(ctx) {
			return fmt.Errorf("rebase of %s is no longer in progress", branchName)
		}

		hasConflicts, err := git.HasUnmergedFiles(ctx)
		if err != nil {
			return err
		}
		if !hasConflicts {
			return nil
		}

		if time.Now().After(deadline) {
			return rechainerrors.NewRebaseConflictError(branchName, "timed out waiting for conflict resolution")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(conflictPollInterval):
		}
	}
}

// finishConflictedRebase stages nothing itself; it assumes conflicts have been
// resolved and staged, runs the rebase to completion and points branchName at
// the resulting commit. The rebase runs detached, so the branch ref has to be
// moved by hand afterwards.
func finishConflictedRebase(ctx context.Context, branchName string) (git.RebaseResult, error) {
	result, err := git.RebaseContinue(ctx)
	if err != nil {
		return git.RebaseConflict, err
	}
	if result == git.RebaseConflict {
		return git.RebaseConflict, nil
	}

	newTip, err := git.GetRevision("HEAD")
	if err != nil {
		return git.RebaseConflict, err
	}
	if err := git.UpdateBranchRef(ctx, branchName, newTip); err != nil {
		return git.RebaseConflict, err
	}

	return git.RebaseDone, nil
}
