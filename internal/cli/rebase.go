package cli

import (
	"time"

	"github.com/spf13/cobra"

	"rechain.dev/rechain/internal/actions"
	"rechain.dev/rechain/internal/runtime"
)

// newRebaseCmd creates the rebase command
func newRebaseCmd() *cobra.Command {
	var (
		onto            string
		skipRoot        bool
		wait            bool
		conflictTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rebase <branch> <branch>...",
		Short: "Transplant a whole chain of branches onto a new base",
		Long: `Transplant a whole chain of branches onto a new base.

The first branch is rebased onto the target ref, then every later branch is
re-anchored onto the new position of the branch it was built on. Without
--onto the repository's configured trunk is used. With --skip-root the first
branch stays where it is and only the dependent branches move.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer func() { _ = rctx.Splog.Close() }()

			return actions.RebaseAction(rctx, actions.RebaseOptions{
				Branches: args,
				Onto:     onto,
				SkipRoot: skipRoot,
				WalkOptions: actions.WalkOptions{
					Wait:            wait,
					ConflictTimeout: conflictTimeout,
				},
			})
		},
	}

	cmd.Flags().StringVar(&onto, "onto", "", "Ref to rebase the chain onto (default: configured trunk)")
	cmd.Flags().BoolVar(&skipRoot, "skip-root", false, "Leave the first branch in place and only move the dependent branches")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until rebase conflicts are resolved instead of exiting")
	cmd.Flags().DurationVar(&conflictTimeout, "conflict-timeout", 0, "How long --wait blocks before giving up (default: repository config)")

	return cmd
}
