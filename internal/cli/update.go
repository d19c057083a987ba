package cli

import (
	"time"

	"github.com/spf13/cobra"

	"rechain.dev/rechain/internal/actions"
	"rechain.dev/rechain/internal/runtime"
)

// newUpdateCmd creates the update command
func newUpdateCmd() *cobra.Command {
	var (
		wait            bool
		conflictTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "update <branch> [<branch>...]",
		Short: "Re-anchor dependent branches after the first branch in the chain was rewritten",
		Long: `Re-anchor dependent branches after the first branch in the chain was rewritten.

The first branch is taken as the source of truth and never moves. Every later
branch is rebased onto the new position of the branch it was built on,
replaying only its own commits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer func() { _ = rctx.Splog.Close() }()

			return actions.UpdateAction(rctx, actions.UpdateOptions{
				Branches: args,
				WalkOptions: actions.WalkOptions{
					Wait:            wait,
					ConflictTimeout: conflictTimeout,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until rebase conflicts are resolved instead of exiting")
	cmd.Flags().DurationVar(&conflictTimeout, "conflict-timeout", 0, "How long --wait blocks before giving up (default: repository config)")

	return cmd
}
